package commands

import (
	"context"
	"log/slog"

	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/ports"
)

// CreatePickingTaskCommandHandler creates one task for a batch of units.
//
// The target must be an active picking cell of the warehouse, every unit must
// exist in the warehouse and sit in a storage or shipping cell. Any violation
// rejects the whole batch and names every offending unit. Each unit's current
// cell is recorded as the cell it returns to on cancellation.
type CreatePickingTaskCommandHandler struct {
	creator taskCreator
}

func NewCreatePickingTaskCommandHandler(
	uowFactory TaskUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CreatePickingTaskCommandHandler {
	return CreatePickingTaskCommandHandler{
		creator: newTaskCreator(uowFactory, publisher, logger.With("component", "create_picking_task")),
	}
}

func (h CreatePickingTaskCommandHandler) Handle(ctx context.Context, command CreatePickingTaskCommand) (*task.Task, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return h.creator.create(ctx, taskDraft{
		warehouseID:  command.WarehouseID(),
		unitIDs:      command.UnitIDs(),
		targetCellID: command.TargetCellID(),
		scenario:     command.Scenario(),
		actor:        command.Actor(),
		kind:         history.KindTaskCreated,
	})
}
