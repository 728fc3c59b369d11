package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var ErrCancelPickingTaskCommandIsNotConstructed = errors.New(
	"CancelPickingTaskCommand must be created via NewCancelPickingTaskCommand constructor",
)

// CancelPickingTaskCommand cancels an active task and returns its units to
// the cells they were taken from.
type CancelPickingTaskCommand struct { //nolint:recvcheck //using for validation
	warehouseID kernel.UUID
	taskID      kernel.UUID
	actor       kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelPickingTaskCommand(warehouseID, taskID kernel.UUID, actor kernel.Actor) (CancelPickingTaskCommand, error) {
	if err := errors.Join(warehouseID.Validate(), taskID.Validate(), actor.Validate()); err != nil {
		return CancelPickingTaskCommand{}, err
	}

	return CancelPickingTaskCommand{
		warehouseID: warehouseID,
		taskID:      taskID,
		actor:       actor,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CancelPickingTaskCommand) Validate() error {
	return c.guard.Validate(ErrCancelPickingTaskCommandIsNotConstructed)
}

func (c CancelPickingTaskCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c CancelPickingTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c CancelPickingTaskCommand) Actor() kernel.Actor {
	return c.actor
}
