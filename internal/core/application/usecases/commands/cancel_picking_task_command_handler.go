package commands

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"
)

// ErrNoFromCell is reported for task units without a from-cell snapshot.
var ErrNoFromCell = errs.NewValueIsRequiredError("from cell snapshot")

// CancelPolicy decides whether a cancellation may finish when some units
// could not be returned.
type CancelPolicy struct {
	// RequireFullRevert keeps the task active unless every unit was returned.
	RequireFullRevert bool
}

// CancelResult reports how many units went back to their cells.
type CancelResult struct {
	TaskID    kernel.UUID
	Returned  int
	Total     int
	Failures  []batch.Outcome[kernel.UUID]
	Finalized bool
}

// CancelPickingTaskCommandHandler cancels an active task.
//
// Every unit is moved back to the cell recorded when it was attached, not to
// wherever it went afterwards. Units are reverted independently: a failed
// revert is logged and reported but does not stop the others. With the
// default policy the task is canceled whatever the revert outcome.
type CancelPickingTaskCommandHandler struct {
	uowFactory TaskUoWFactory
	mover      UnitMover
	publisher  ports.EventPublisher
	policy     CancelPolicy
	logger     *slog.Logger
	now        func() time.Time
}

func NewCancelPickingTaskCommandHandler(
	uowFactory TaskUoWFactory,
	mover UnitMover,
	publisher ports.EventPublisher,
	policy CancelPolicy,
	logger *slog.Logger,
) CancelPickingTaskCommandHandler {
	return CancelPickingTaskCommandHandler{
		uowFactory: uowFactory,
		mover:      mover,
		publisher:  publisher,
		policy:     policy,
		logger:     logger.With("component", "cancel_picking_task"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h CancelPickingTaskCommandHandler) Handle(ctx context.Context, command CancelPickingTaskCommand) (CancelResult, error) {
	if err := command.Validate(); err != nil {
		return CancelResult{}, err
	}

	t, current, err := h.load(ctx, command)
	if err != nil {
		return CancelResult{}, err
	}

	report := batch.Drain(h.revertUnits(ctx, command, t, current))
	result := CancelResult{
		TaskID:   t.ID(),
		Returned: len(report.Succeeded),
		Total:    report.Total(),
		Failures: report.Failed,
	}

	for _, f := range report.Failed {
		h.logger.WarnContext(ctx, "failed to return unit on cancel",
			"task_id", t.ID().String(), "unit_id", f.Key, "error", f.Err)
	}

	if h.policy.RequireFullRevert && !report.AllSucceeded() {
		return result, fmt.Errorf("%w: returned %d of %d units of task %s",
			ErrCancelIncomplete, result.Returned, result.Total, t.ID())
	}

	if err = h.finalize(ctx, command, result); err != nil {
		return result, err
	}
	result.Finalized = true
	return result, nil
}

// load reads the task and the current state of its units.
func (h CancelPickingTaskCommandHandler) load(
	ctx context.Context,
	command CancelPickingTaskCommand,
) (*task.Task, map[kernel.UUID]*unit.Unit, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	t, err := loadTask(ctx, uow.TaskRepository(), command.TaskID(), command.WarehouseID())
	if err != nil {
		return nil, nil, err
	}
	if t.Status().IsTerminal() {
		return nil, nil, fmt.Errorf("%w: status is %s", task.ErrTaskIsClosed, t.Status())
	}

	units, err := uow.UnitRepository().GetMany(ctx, t.MemberUnitIDs())
	if err != nil {
		return nil, nil, err
	}
	current := make(map[kernel.UUID]*unit.Unit, len(units))
	for _, u := range units {
		current[u.ID()] = u
	}
	return t, current, nil
}

// revertUnits yields one outcome per task unit. The legacy single-unit
// reference has no snapshot and is reported as a failure unless it is also
// a task unit.
func (h CancelPickingTaskCommandHandler) revertUnits(
	ctx context.Context,
	command CancelPickingTaskCommand,
	t *task.Task,
	current map[kernel.UUID]*unit.Unit,
) iter.Seq[batch.Outcome[kernel.UUID]] {
	return func(yield func(batch.Outcome[kernel.UUID]) bool) {
		index := 0
		snapshots := make(map[kernel.UUID]*kernel.UUID)
		for _, member := range t.Units() {
			snapshots[member.UnitID()] = member.FromCellID()
		}

		for _, unitID := range t.MemberUnitIDs() {
			err := h.revertUnit(ctx, command, unitID, snapshots[unitID], current[unitID])

			outcome := batch.Ok(index, unitID.String(), unitID)
			if err != nil {
				outcome = batch.Fail[kernel.UUID](index, unitID.String(), err)
			}
			index++
			if !yield(outcome) {
				return
			}
		}
	}
}

func (h CancelPickingTaskCommandHandler) revertUnit(
	ctx context.Context,
	command CancelPickingTaskCommand,
	unitID kernel.UUID,
	fromCellID *kernel.UUID,
	u *unit.Unit,
) error {
	if fromCellID == nil {
		return fmt.Errorf("unit %s: %w", unitID, ErrNoFromCell)
	}
	if u == nil {
		return errs.NewObjectNotFoundError("unit", unitID.String())
	}
	// A unit already in its snapshot cell needs no move, so the executor and
	// its lock and cell checks are skipped for it.
	if kernel.PtrEqual(u.CellID(), fromCellID) {
		return nil
	}

	move, err := NewMoveUnitCommand(command.WarehouseID(), unitID, *fromCellID, movement.SourceTaskCancel, command.Actor())
	if err != nil {
		return err
	}
	if _, err = h.mover.Handle(ctx, move); err != nil {
		return fmt.Errorf("unit %s: %w", u.Barcode(), err)
	}
	return nil
}

func (h CancelPickingTaskCommandHandler) finalize(ctx context.Context, command CancelPickingTaskCommand, result CancelResult) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()

	t, err := loadTask(ctx, taskRepo, command.TaskID(), command.WarehouseID())
	if err != nil {
		return err
	}

	now := h.now()
	if err = t.Cancel(command.Actor().ID(), now); err != nil {
		return err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return err
	}

	failures := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, f.Err.Error())
	}
	taskID := t.ID()
	event, err := history.NewEvent(command.WarehouseID(), &taskID, history.KindTaskCanceled, command.Actor().ID(),
		fmt.Sprintf("picking task canceled, returned %d of %d unit(s)", result.Returned, result.Total),
		map[string]any{"returned": result.Returned, "total": result.Total, "failures": failures}, now)
	if err != nil {
		return err
	}
	if err = uow.HistoryRepository().Add(ctx, event); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publish(ctx, h.publisher, h.logger, event)
	return nil
}

// Err summarizes failed reverts, or returns nil when every unit went back.
func (r CancelResult) Err() error {
	errList := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errList = append(errList, f.Err)
	}
	return errors.Join(errList...)
}
