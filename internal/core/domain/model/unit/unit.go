// Package unit models the parcels tracked inside a warehouse.
package unit

import (
	"errors"
	"fmt"
	"maps"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	// ErrUnitIsNotConstructed is returned when using a Unit not built by NewUnit or RestoreUnit.
	ErrUnitIsNotConstructed = errors.New("Unit must be created via NewUnit or RestoreUnit constructor")
	// ErrStatusDisagreesWithCell is returned when status and cell presence contradict each other.
	ErrStatusDisagreesWithCell = errors.New("unit status disagrees with its cell")
)

// Unit is a parcel identified by its barcode.
//
// Its status is never set on its own: MoveTo changes cell and status together,
// and the caller derives the status from the target cell type. A unit without
// a cell is either unset (never placed) or out (shipped).
type Unit struct {
	id          kernel.UUID
	warehouseID kernel.UUID
	barcode     kernel.Barcode
	cellID      *kernel.UUID
	status      Status
	meta        map[string]any
	guard       guard.ConstructorGuard
}

// NewUnit registers a unit that has not been placed in any cell yet.
func NewUnit(id, warehouseID kernel.UUID, barcode kernel.Barcode) (*Unit, error) {
	return RestoreUnit(id, warehouseID, barcode, nil, Unset, nil)
}

// RestoreUnit rebuilds a Unit from persistence.
func RestoreUnit(
	id, warehouseID kernel.UUID,
	barcode kernel.Barcode,
	cellID *kernel.UUID,
	status Status,
	meta map[string]any,
) (*Unit, error) {
	u := &Unit{
		meta:  maps.Clone(meta),
		guard: guard.NewConstructorGuard(),
	}
	if u.meta == nil {
		u.meta = make(map[string]any)
	}

	if err := errors.Join(
		u.setID(id),
		u.setWarehouseID(warehouseID),
		u.setBarcode(barcode),
		u.setLocation(cellID, status),
	); err != nil {
		return nil, err
	}

	return u, nil
}

func (u *Unit) Validate() error {
	if u == nil {
		return ErrUnitIsNotConstructed
	}
	return u.guard.Validate(ErrUnitIsNotConstructed)
}

func (u *Unit) ID() kernel.UUID {
	return u.id
}

func (u *Unit) WarehouseID() kernel.UUID {
	return u.warehouseID
}

func (u *Unit) Barcode() kernel.Barcode {
	return u.barcode
}

// CellID returns the current cell, or nil when the unit is unplaced or shipped.
func (u *Unit) CellID() *kernel.UUID {
	if u.cellID == nil {
		return nil
	}
	id := *u.cellID
	return &id
}

func (u *Unit) Status() Status {
	return u.status
}

// Meta returns a copy of the free-form attributes.
func (u *Unit) Meta() map[string]any {
	return maps.Clone(u.meta)
}

// SetMeta replaces a single free-form attribute.
func (u *Unit) SetMeta(key string, value any) {
	u.meta[key] = value
}

// BelongsTo reports whether the unit is registered in the given warehouse.
func (u *Unit) BelongsTo(warehouseID kernel.UUID) bool {
	return u.warehouseID.IsEqual(warehouseID)
}

// IsIn reports whether the unit currently sits in the given cell.
func (u *Unit) IsIn(cellID kernel.UUID) bool {
	return u.cellID != nil && u.cellID.IsEqual(cellID)
}

// MoveTo places the unit in cellID with the status derived from that cell's type.
func (u *Unit) MoveTo(cellID kernel.UUID, status Status) error {
	if err := cellID.Validate(); err != nil {
		return err
	}
	return u.setLocation(&cellID, status)
}

func (u *Unit) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	u.id = id
	return nil
}

func (u *Unit) setWarehouseID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	u.warehouseID = id
	return nil
}

func (u *Unit) setBarcode(barcode kernel.Barcode) error {
	normalized, err := kernel.NewBarcode(string(barcode))
	if err != nil {
		return err
	}
	u.barcode = normalized
	return nil
}

func (u *Unit) setLocation(cellID *kernel.UUID, status Status) error {
	if err := status.validate(); err != nil {
		return err
	}
	if (cellID != nil) != status.IsLocated() {
		return errs.NewValueIsInvalidErrorWithCause("unit status",
			fmt.Errorf("%w: status %q, has cell %t", ErrStatusDisagreesWithCell, status, cellID != nil))
	}

	if cellID == nil {
		u.cellID = nil
	} else {
		id := *cellID
		u.cellID = &id
	}
	u.status = status
	return nil
}
