package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/errs"
)

// CompleteResult describes a successful completion call.
type CompleteResult struct {
	TaskID     kernel.UUID
	Move       MoveResult
	TaskStatus task.Status
	// Remaining counts task units not yet in the target cell.
	Remaining int
}

// CompletePickingTaskCommandHandler moves one unit of a task into the task's
// picking cell.
//
// Workflow:
//  1. closed tasks are rejected
//  2. an open task becomes in_progress with picked_by/picked_at
//  3. unit membership, its current cell code and the target cell code are
//     checked against the command
//  4. the transition is re-checked; a move from bin into picking never passes
//  5. the unit is moved by the move executor
//  6. the task is done once every unit sits in the target cell
//
// If anything after step 2 fails and this call made the task in_progress,
// the task is put back to open and picked_by/picked_at are cleared.
type CompletePickingTaskCommandHandler struct {
	uowFactory TaskUoWFactory
	mover      UnitMover
	publisher  ports.EventPublisher
	policy     services.TransitionPolicy
	logger     *slog.Logger
	now        func() time.Time
}

func NewCompletePickingTaskCommandHandler(
	uowFactory TaskUoWFactory,
	mover UnitMover,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompletePickingTaskCommandHandler {
	return CompletePickingTaskCommandHandler{
		uowFactory: uowFactory,
		mover:      mover,
		publisher:  publisher,
		policy:     services.NewTransitionPolicy(),
		logger:     logger.With("component", "complete_picking_task"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h CompletePickingTaskCommandHandler) Handle(
	ctx context.Context,
	command CompletePickingTaskCommand,
) (CompleteResult, error) {
	if err := command.Validate(); err != nil {
		return CompleteResult{}, err
	}

	flipped, err := h.start(ctx, command)
	if err != nil {
		return CompleteResult{}, err
	}

	moved, err := h.moveUnit(ctx, command)
	if err != nil {
		if flipped {
			if revertErr := h.revertStart(ctx, command.TaskID()); revertErr != nil {
				h.logger.ErrorContext(ctx, "failed to reopen task after failed completion",
					"task_id", command.TaskID().String(), "error", revertErr)
				err = errors.Join(err, revertErr)
			}
		}
		return CompleteResult{}, err
	}

	return h.finish(ctx, command, moved)
}

// start flips an open task to in_progress and reports whether it did.
func (h CompletePickingTaskCommandHandler) start(ctx context.Context, command CompletePickingTaskCommand) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()

	t, err := loadTask(ctx, taskRepo, command.TaskID(), command.WarehouseID())
	if err != nil {
		return false, err
	}

	flipped, err := t.Start(command.Actor().ID(), h.now())
	if err != nil {
		return false, err
	}
	if !flipped {
		return false, nil
	}

	if err = taskRepo.Update(ctx, t); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (h CompletePickingTaskCommandHandler) moveUnit(ctx context.Context, command CompletePickingTaskCommand) (MoveResult, error) {
	unitID, targetID, err := h.verify(ctx, command)
	if err != nil {
		return MoveResult{}, err
	}

	move, err := NewMoveUnitCommand(command.WarehouseID(), unitID, targetID, movement.SourceTaskComplete, command.Actor())
	if err != nil {
		return MoveResult{}, err
	}
	return h.mover.Handle(ctx, move)
}

// verify checks the command against stored state and returns the unit and
// target cell of the move.
func (h CompletePickingTaskCommandHandler) verify(
	ctx context.Context,
	command CompletePickingTaskCommand,
) (kernel.UUID, kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cellRepo := uow.CellRepository()

	t, err := loadTask(ctx, uow.TaskRepository(), command.TaskID(), command.WarehouseID())
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	u, err := uow.UnitRepository().GetByBarcode(ctx, command.WarehouseID(), command.Barcode())
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	if !t.HasMember(u.ID()) {
		return kernel.UUID{}, kernel.UUID{}, fmt.Errorf("%w: unit %s, task %s", ErrUnitNotInTask, u.Barcode(), t.ID())
	}

	subject := "unit " + u.Barcode().String() + " cell"
	currentID := u.CellID()
	if currentID == nil {
		return kernel.UUID{}, kernel.UUID{}, errs.NewConflictError(subject, command.FromCellCode(), "none")
	}
	current, err := cellRepo.Get(ctx, *currentID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	if current.Code() != command.FromCellCode() {
		return kernel.UUID{}, kernel.UUID{}, errs.NewConflictError(subject, command.FromCellCode(), current.Code())
	}

	target, err := cellRepo.Get(ctx, t.TargetCellID())
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	if target.Code() != command.ToCellCode() {
		return kernel.UUID{}, kernel.UUID{}, errs.NewConflictError("task target cell", command.ToCellCode(), target.Code())
	}

	fromType := current.Type()
	if fromType == cell.Bin && target.Type() == cell.Picking {
		return kernel.UUID{}, kernel.UUID{}, fmt.Errorf("%w: unit %s is still in bin %s",
			services.ErrTransitionNotAllowed, u.Barcode(), current.Code())
	}
	if err = h.policy.CheckTransition(&fromType, target.Type()); err != nil {
		return kernel.UUID{}, kernel.UUID{}, fmt.Errorf("unit %s: %w", u.Barcode(), err)
	}

	return u.ID(), target.ID(), nil
}

// finish marks the task done once all of its units reached the target cell.
func (h CompletePickingTaskCommandHandler) finish(
	ctx context.Context,
	command CompletePickingTaskCommand,
	moved MoveResult,
) (CompleteResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompleteResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()

	t, err := loadTask(ctx, taskRepo, command.TaskID(), command.WarehouseID())
	if err != nil {
		return CompleteResult{}, err
	}

	members, err := uow.UnitRepository().GetMany(ctx, t.MemberUnitIDs())
	if err != nil {
		return CompleteResult{}, err
	}
	remaining := len(t.MemberUnitIDs()) - len(members)
	for _, u := range members {
		if !u.IsIn(t.TargetCellID()) {
			remaining++
		}
	}

	result := CompleteResult{TaskID: t.ID(), Move: moved, TaskStatus: t.Status(), Remaining: remaining}
	if remaining > 0 || t.Status() != task.InProgress {
		return result, nil
	}

	now := h.now()
	if err = t.Complete(command.Actor().ID(), now); err != nil {
		return CompleteResult{}, err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return CompleteResult{}, err
	}

	taskID := t.ID()
	event, err := history.NewEvent(command.WarehouseID(), &taskID, history.KindTaskCompleted, command.Actor().ID(),
		fmt.Sprintf("picking task completed with %d unit(s)", len(members)),
		map[string]any{"units": len(members), "last_unit": moved.UnitID.String()}, now)
	if err != nil {
		return CompleteResult{}, err
	}
	if err = uow.HistoryRepository().Add(ctx, event); err != nil {
		return CompleteResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompleteResult{}, err
	}

	publish(ctx, h.publisher, h.logger, event)
	result.TaskStatus = t.Status()
	return result, nil
}

func (h CompletePickingTaskCommandHandler) revertStart(ctx context.Context, taskID kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()

	t, err := taskRepo.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Status() != task.InProgress {
		return nil
	}
	if err = t.RevertStart(); err != nil {
		return err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// loadTask reads a task and hides tasks of other warehouses.
func loadTask(ctx context.Context, repo ports.TaskRepository, taskID, warehouseID kernel.UUID) (*task.Task, error) {
	t, err := repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.BelongsTo(warehouseID) {
		return nil, fmt.Errorf("%w: task %s", ErrCrossWarehouse, taskID)
	}
	return t, nil
}
