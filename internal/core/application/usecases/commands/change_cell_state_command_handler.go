package commands

import (
	"context"
	"fmt"
	"log/slog"

	"warehouse/internal/core/domain/model/cell"
)

// ChangeCellStateCommandHandler applies a CellAction. Flags are the only
// mutable attributes of a cell; repeating an action is a no-op.
type ChangeCellStateCommandHandler struct {
	uowFactory CellUoWFactory
	logger     *slog.Logger
}

func NewChangeCellStateCommandHandler(uowFactory CellUoWFactory, logger *slog.Logger) ChangeCellStateCommandHandler {
	return ChangeCellStateCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "change_cell_state"),
	}
}

func (h ChangeCellStateCommandHandler) Handle(ctx context.Context, command ChangeCellStateCommand) (*cell.Cell, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cellRepo := uow.CellRepository()

	c, err := cellRepo.Get(ctx, command.CellID())
	if err != nil {
		return nil, err
	}
	if !c.BelongsTo(command.WarehouseID()) {
		return nil, fmt.Errorf("%w: cell %s", ErrCrossWarehouse, command.CellID())
	}

	switch command.Action() {
	case CellActivate:
		c.Activate()
	case CellDeactivate:
		c.Deactivate()
	case CellBlock:
		c.Block()
	case CellUnblock:
		c.Unblock()
	}

	if err = cellRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "cell state changed",
		"cell", c.Code(), "action", string(command.Action()), "actor", command.Actor().String())
	return c, nil
}
