package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	// ErrTaskIsNotConstructed is returned when using a Task not built by NewTask or RestoreTask.
	ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask constructor")
	// ErrTaskHasNoUnits is returned when a task would reference no unit at all.
	ErrTaskHasNoUnits = errs.NewValueIsRequiredError("task units")
	// ErrDuplicateTaskUnit is returned when the same unit is attached twice.
	ErrDuplicateTaskUnit = errors.New("unit is attached to the task more than once")
	// ErrCreatorIsRequired is returned for a task without creator.
	ErrCreatorIsRequired = errs.NewValueIsRequiredError("created by")
)

// Snapshot is the persisted shape of a task. It is used to restore a task from
// storage and to hand its state to repositories.
type Snapshot struct {
	ID           kernel.UUID
	WarehouseID  kernel.UUID
	TargetCellID kernel.UUID
	Scenario     *string
	Status       Status
	CreatedBy    string
	CreatedAt    time.Time
	PickedBy     *string
	PickedAt     *time.Time
	CompletedBy  *string
	CompletedAt  *time.Time
	CanceledBy   *string
	CanceledAt   *time.Time
	CloseNote    *string
	// LegacyUnitID is the single-unit reference of tasks created before task
	// units existed. New tasks never set it.
	LegacyUnitID *kernel.UUID
	Units        []Unit
}

// Task is the picking task aggregate root.
//
// Invariants:
//   - the target cell, warehouse and creator are always set
//   - at least one unit is attached (through units or the legacy reference)
//   - a unit is attached at most once
//   - actor/timestamp pairs are set exactly when the matching transition happened
type Task struct {
	s     Snapshot
	guard guard.ConstructorGuard
}

// NewTask creates an open task.
//
// Example:
//
//	member, _ := task.NewUnit(u.ID(), u.CellID())
//	t, err := task.NewTask(kernel.NewUUID(), warehouseID, pickingCell.ID(), nil,
//	    []task.Unit{member}, actor.ID(), time.Now())
func NewTask(
	id, warehouseID, targetCellID kernel.UUID,
	scenario *string,
	units []Unit,
	createdBy string,
	now time.Time,
) (*Task, error) {
	return RestoreTask(Snapshot{
		ID:           id,
		WarehouseID:  warehouseID,
		TargetCellID: targetCellID,
		Scenario:     normalizeScenario(scenario),
		Status:       Open,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		Units:        units,
	})
}

// RestoreTask rebuilds a task from persistence.
func RestoreTask(s Snapshot) (*Task, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.WarehouseID.Validate(),
		s.TargetCellID.Validate(),
		s.Status.Validate(),
		validateCreator(s.CreatedBy),
		validateUnits(s.LegacyUnitID, s.Units),
	); err != nil {
		return nil, err
	}

	s.Units = append([]Unit(nil), s.Units...)
	return &Task{s: s, guard: guard.NewConstructorGuard()}, nil
}

func (t *Task) Validate() error {
	if t == nil {
		return ErrTaskIsNotConstructed
	}
	return t.guard.Validate(ErrTaskIsNotConstructed)
}

// Snapshot returns a copy of the task state.
func (t *Task) Snapshot() Snapshot {
	s := t.s
	s.Units = append([]Unit(nil), t.s.Units...)
	return s
}

func (t *Task) ID() kernel.UUID              { return t.s.ID }
func (t *Task) WarehouseID() kernel.UUID     { return t.s.WarehouseID }
func (t *Task) TargetCellID() kernel.UUID    { return t.s.TargetCellID }
func (t *Task) Scenario() *string            { return t.s.Scenario }
func (t *Task) Status() Status               { return t.s.Status }
func (t *Task) CreatedBy() string            { return t.s.CreatedBy }
func (t *Task) CreatedAt() time.Time         { return t.s.CreatedAt }
func (t *Task) PickedBy() *string            { return t.s.PickedBy }
func (t *Task) PickedAt() *time.Time         { return t.s.PickedAt }
func (t *Task) CompletedBy() *string         { return t.s.CompletedBy }
func (t *Task) CompletedAt() *time.Time      { return t.s.CompletedAt }
func (t *Task) CanceledBy() *string          { return t.s.CanceledBy }
func (t *Task) CanceledAt() *time.Time       { return t.s.CanceledAt }
func (t *Task) CloseNote() *string           { return t.s.CloseNote }
func (t *Task) LegacyUnitID() *kernel.UUID   { return t.s.LegacyUnitID }
func (t *Task) Units() []Unit                { return append([]Unit(nil), t.s.Units...) }
func (t *Task) BelongsTo(w kernel.UUID) bool { return t.s.WarehouseID.IsEqual(w) }

// MemberUnitIDs returns every unit of the task, including the legacy reference,
// without duplicates.
func (t *Task) MemberUnitIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(t.s.Units)+1)
	seen := make(map[kernel.UUID]struct{}, len(t.s.Units)+1)
	add := func(id kernel.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if t.s.LegacyUnitID != nil {
		add(*t.s.LegacyUnitID)
	}
	for _, u := range t.s.Units {
		add(u.UnitID())
	}
	return ids
}

// HasMember reports whether unitID is attached to the task.
func (t *Task) HasMember(unitID kernel.UUID) bool {
	for _, id := range t.MemberUnitIDs() {
		if id.IsEqual(unitID) {
			return true
		}
	}
	return false
}

// IsOlderThan reports whether the task was created before cutoff.
func (t *Task) IsOlderThan(cutoff time.Time) bool {
	return t.s.CreatedAt.Before(cutoff)
}

// Start records the first completion attempt. It reports whether the call
// flipped the task from open to in_progress, so a failed attempt can be undone
// with RevertStart.
func (t *Task) Start(actor string, now time.Time) (bool, error) {
	next, err := t.s.Status.Start()
	if err != nil {
		return false, err
	}
	if t.s.Status == next {
		return false, nil
	}

	t.s.Status = next
	t.s.PickedBy = &actor
	t.s.PickedAt = &now
	return true, nil
}

// RevertStart undoes a flip made by Start.
func (t *Task) RevertStart() error {
	if t.s.Status != InProgress {
		return fmt.Errorf("%w: status is %s", ErrTaskIsNotInProgress, t.s.Status)
	}
	t.s.Status = Open
	t.s.PickedBy = nil
	t.s.PickedAt = nil
	return nil
}

// Complete marks a started task as done.
func (t *Task) Complete(actor string, now time.Time) error {
	next, err := t.s.Status.Complete()
	if err != nil {
		return err
	}
	t.s.Status = next
	t.s.CompletedBy = &actor
	t.s.CompletedAt = &now
	return nil
}

// Cancel finalizes the task as canceled. Returning units to their snapshot
// cells is the caller's job and happens before this call.
func (t *Task) Cancel(actor string, now time.Time) error {
	next, err := t.s.Status.Cancel()
	if err != nil {
		return err
	}
	t.s.Status = next
	t.s.CanceledBy = &actor
	t.s.CanceledAt = &now
	return nil
}

// ForceClose marks an active task as done without moving any unit.
func (t *Task) ForceClose(actor, note string, now time.Time) error {
	next, err := t.s.Status.ForceClose()
	if err != nil {
		return err
	}
	t.s.Status = next
	t.s.CompletedBy = &actor
	t.s.CompletedAt = &now
	t.s.CloseNote = &note
	return nil
}

func validateCreator(createdBy string) error {
	if strings.TrimSpace(createdBy) == "" {
		return ErrCreatorIsRequired
	}
	return nil
}

func validateUnits(legacy *kernel.UUID, units []Unit) error {
	if legacy == nil && len(units) == 0 {
		return ErrTaskHasNoUnits
	}
	seen := make(map[kernel.UUID]struct{}, len(units))
	for _, u := range units {
		if err := u.UnitID().Validate(); err != nil {
			return err
		}
		if _, ok := seen[u.UnitID()]; ok {
			return errs.NewValueIsInvalidErrorWithCause("task units",
				fmt.Errorf("%w: %s", ErrDuplicateTaskUnit, u.UnitID()))
		}
		seen[u.UnitID()] = struct{}{}
	}
	return nil
}

func normalizeScenario(scenario *string) *string {
	if scenario == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*scenario)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
