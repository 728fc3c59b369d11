// Package movement holds the append-only record of unit relocations.
package movement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord or RestoreRecord constructor")
	ErrUnknownSource          = errors.New("unknown move source")
)

// Source names the operation that moved a unit.
type Source string

const (
	SourceManual       Source = "manual"
	SourceTaskComplete Source = "picking_task_complete"
	SourceTaskCancel   Source = "picking_task_cancel"
)

// ParseSource maps a stored source to a Source.
func ParseSource(raw string) (Source, error) {
	switch s := Source(raw); s {
	case SourceManual, SourceTaskComplete, SourceTaskCancel:
		return s, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("move source", fmt.Errorf("%w: %q", ErrUnknownSource, raw))
	}
}

func (s Source) String() string {
	return string(s)
}

// Record is written once per successful move and never changed.
type Record struct {
	id          kernel.UUID
	warehouseID kernel.UUID
	unitID      kernel.UUID
	fromCellID  *kernel.UUID
	toCellID    kernel.UUID
	toStatus    unit.Status
	source      Source
	actor       string
	at          time.Time
	guard       guard.ConstructorGuard
}

// NewRecord describes a move that has just been applied to u.
func NewRecord(u *unit.Unit, fromCellID *kernel.UUID, source Source, actor string, at time.Time) (*Record, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	to := u.CellID()
	if to == nil {
		return nil, errs.NewValueIsRequiredError("move target cell")
	}
	return RestoreRecord(kernel.NewUUID(), u.WarehouseID(), u.ID(), fromCellID, *to, u.Status(), source, actor, at)
}

// RestoreRecord rebuilds a record from persistence.
func RestoreRecord(
	id, warehouseID, unitID kernel.UUID,
	fromCellID *kernel.UUID,
	toCellID kernel.UUID,
	toStatus unit.Status,
	source Source,
	actor string,
	at time.Time,
) (*Record, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, errs.NewValueIsRequiredError("move actor")
	}
	if _, err := ParseSource(string(source)); err != nil {
		return nil, err
	}
	if err := errors.Join(
		id.Validate(),
		warehouseID.Validate(),
		unitID.Validate(),
		toCellID.Validate(),
	); err != nil {
		return nil, err
	}
	if !toStatus.IsLocated() {
		return nil, errs.NewValueIsInvalidErrorWithCause("move status",
			fmt.Errorf("%w: %q", unit.ErrStatusDisagreesWithCell, toStatus))
	}

	r := &Record{
		id:          id,
		warehouseID: warehouseID,
		unitID:      unitID,
		toCellID:    toCellID,
		toStatus:    toStatus,
		source:      source,
		actor:       actor,
		at:          at,
		guard:       guard.NewConstructorGuard(),
	}
	if fromCellID != nil {
		from := *fromCellID
		r.fromCellID = &from
	}
	return r, nil
}

func (r *Record) Validate() error {
	if r == nil {
		return ErrRecordIsNotConstructed
	}
	return r.guard.Validate(ErrRecordIsNotConstructed)
}

func (r *Record) ID() kernel.UUID          { return r.id }
func (r *Record) WarehouseID() kernel.UUID { return r.warehouseID }
func (r *Record) UnitID() kernel.UUID      { return r.unitID }
func (r *Record) ToCellID() kernel.UUID    { return r.toCellID }
func (r *Record) ToStatus() unit.Status    { return r.toStatus }
func (r *Record) Source() Source           { return r.source }
func (r *Record) Actor() string            { return r.actor }
func (r *Record) At() time.Time            { return r.at }

// FromCellID is nil for the first placement of a unit.
func (r *Record) FromCellID() *kernel.UUID {
	if r.fromCellID == nil {
		return nil
	}
	id := *r.fromCellID
	return &id
}
