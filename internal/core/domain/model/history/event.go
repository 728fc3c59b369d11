// Package history describes task lifecycle events written to the audit log.
package history

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent or RestoreEvent constructor")
	ErrUnknownKind           = errors.New("unknown history event kind")
)

// Kind is the type of a lifecycle event.
type Kind string

const (
	KindTaskCreated     Kind = "picking_task_created"
	KindTaskImported    Kind = "picking_task_imported"
	KindTaskCompleted   Kind = "picking_task_completed"
	KindTaskCanceled    Kind = "picking_task_canceled"
	KindTaskForceClosed Kind = "picking_task_force_closed"
)

func getKinds() []Kind {
	return []Kind{KindTaskCreated, KindTaskImported, KindTaskCompleted, KindTaskCanceled, KindTaskForceClosed}
}

// ParseKind maps a stored kind to a Kind.
func ParseKind(raw string) (Kind, error) {
	for _, k := range getKinds() {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("history kind", fmt.Errorf("%w: %q", ErrUnknownKind, raw))
}

func (k Kind) String() string {
	return string(k)
}

// Event is an append-only audit entry. The core writes events and never
// reads them back.
type Event struct {
	id          kernel.UUID
	warehouseID kernel.UUID
	taskID      *kernel.UUID
	kind        Kind
	actor       string
	summary     string
	meta        map[string]any
	at          time.Time
	guard       guard.ConstructorGuard
}

// NewEvent builds an event about taskID (which may be nil for warehouse-wide events).
func NewEvent(
	warehouseID kernel.UUID,
	taskID *kernel.UUID,
	kind Kind,
	actor, summary string,
	meta map[string]any,
	at time.Time,
) (*Event, error) {
	return RestoreEvent(kernel.NewUUID(), warehouseID, taskID, kind, actor, summary, meta, at)
}

// RestoreEvent rebuilds an event from persistence.
func RestoreEvent(
	id, warehouseID kernel.UUID,
	taskID *kernel.UUID,
	kind Kind,
	actor, summary string,
	meta map[string]any,
	at time.Time,
) (*Event, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(actor) == "" {
		return nil, errs.NewValueIsRequiredError("history actor")
	}
	if err := errors.Join(id.Validate(), warehouseID.Validate()); err != nil {
		return nil, err
	}

	e := &Event{
		id:          id,
		warehouseID: warehouseID,
		kind:        kind,
		actor:       actor,
		summary:     summary,
		meta:        maps.Clone(meta),
		at:          at,
		guard:       guard.NewConstructorGuard(),
	}
	if e.meta == nil {
		e.meta = make(map[string]any)
	}
	if taskID != nil {
		tid := *taskID
		e.taskID = &tid
	}
	return e, nil
}

func (e *Event) Validate() error {
	if e == nil {
		return ErrEventIsNotConstructed
	}
	return e.guard.Validate(ErrEventIsNotConstructed)
}

func (e *Event) ID() kernel.UUID          { return e.id }
func (e *Event) WarehouseID() kernel.UUID { return e.warehouseID }
func (e *Event) Kind() Kind               { return e.kind }
func (e *Event) Actor() string            { return e.actor }
func (e *Event) Summary() string          { return e.summary }
func (e *Event) At() time.Time            { return e.at }
func (e *Event) Meta() map[string]any     { return maps.Clone(e.meta) }

func (e *Event) TaskID() *kernel.UUID {
	if e.taskID == nil {
		return nil
	}
	id := *e.taskID
	return &id
}
