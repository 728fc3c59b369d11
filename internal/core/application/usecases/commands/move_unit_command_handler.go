package commands

import (
	"context"
	"fmt"
	"time"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/core/domain/services"
)

// MoveResult describes a completed relocation.
type MoveResult struct {
	UnitID         kernel.UUID
	CellID         kernel.UUID
	Status         unit.Status
	PreviousCellID *kernel.UUID
}

// UnitMover is the move executor as seen by the task lifecycle handlers.
type UnitMover interface {
	Handle(ctx context.Context, command MoveUnitCommand) (MoveResult, error)
}

// MoveUnitCommandHandler is the move executor: one atomic relocation of a unit.
//
// Preconditions are checked in order and the first failure wins:
//  1. the warehouse inventory lock is off (ErrInventoryLocked)
//  2. unit and target cell exist and belong to the warehouse
//     (errs.ErrObjectNotFound, ErrCrossWarehouse)
//  3. the target cell is active and not blocked (ErrCellUnavailable)
//  4. the transition between cell types is legal (services.ErrTransitionNotAllowed)
//
// On success the unit's cell and derived status are updated and a move record
// is appended in the same transaction. Nothing is written on failure, so a
// failed move may simply be retried.
type MoveUnitCommandHandler struct {
	uowFactory MoveUoWFactory
	policy     services.TransitionPolicy
	now        func() time.Time
}

func NewMoveUnitCommandHandler(uowFactory MoveUoWFactory) MoveUnitCommandHandler {
	return MoveUnitCommandHandler{
		uowFactory: uowFactory,
		policy:     services.NewTransitionPolicy(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h MoveUnitCommandHandler) Handle(ctx context.Context, command MoveUnitCommand) (MoveResult, error) {
	if err := command.Validate(); err != nil {
		return MoveResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return MoveResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cellRepo := uow.CellRepository()
	unitRepo := uow.UnitRepository()

	locked, err := uow.LockChecker().IsLocked(ctx, command.WarehouseID())
	if err != nil {
		return MoveResult{}, err
	}
	if locked {
		return MoveResult{}, fmt.Errorf("%w: warehouse %s", ErrInventoryLocked, command.WarehouseID())
	}

	u, err := unitRepo.GetForUpdate(ctx, command.UnitID())
	if err != nil {
		return MoveResult{}, err
	}
	target, err := cellRepo.Get(ctx, command.TargetCellID())
	if err != nil {
		return MoveResult{}, err
	}
	if !u.BelongsTo(command.WarehouseID()) {
		return MoveResult{}, fmt.Errorf("%w: unit %s", ErrCrossWarehouse, u.ID())
	}
	if !target.BelongsTo(command.WarehouseID()) {
		return MoveResult{}, fmt.Errorf("%w: cell %s", ErrCrossWarehouse, target.ID())
	}

	if !target.IsAvailable() {
		return MoveResult{}, fmt.Errorf("%w: cell %s is %s", ErrCellUnavailable, target.Code(), availability(target))
	}

	previous := u.CellID()
	var fromType *cell.Type
	if previous != nil {
		current, err := cellRepo.Get(ctx, *previous)
		if err != nil {
			return MoveResult{}, err
		}
		t := current.Type()
		fromType = &t
	}

	if err = h.policy.CheckTransition(fromType, target.Type()); err != nil {
		return MoveResult{}, fmt.Errorf("unit %s to cell %s: %w", u.Barcode(), target.Code(), err)
	}

	status, err := h.policy.StatusForCellType(target.Type())
	if err != nil {
		return MoveResult{}, err
	}
	if err = u.MoveTo(target.ID(), status); err != nil {
		return MoveResult{}, err
	}
	if err = unitRepo.Update(ctx, u); err != nil {
		return MoveResult{}, err
	}

	record, err := movement.NewRecord(u, previous, command.Source(), command.Actor().ID(), h.now())
	if err != nil {
		return MoveResult{}, err
	}
	if err = uow.MoveRepository().Add(ctx, record); err != nil {
		return MoveResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return MoveResult{}, err
	}

	return MoveResult{
		UnitID:         u.ID(),
		CellID:         target.ID(),
		Status:         status,
		PreviousCellID: previous,
	}, nil
}

func availability(c *cell.Cell) string {
	switch {
	case !c.IsActive() && c.IsBlocked():
		return "inactive and blocked"
	case !c.IsActive():
		return "inactive"
	default:
		return "blocked"
	}
}
