package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/pkg/guard"
)

var ErrMoveUnitCommandIsNotConstructed = errors.New(
	"MoveUnitCommand must be created via NewMoveUnitCommand constructor",
)

// MoveUnitCommand relocates one unit into a target cell.
//
// Example:
//
//	cmd, err := NewMoveUnitCommand(warehouseID, unitID, cellID, movement.SourceManual, actor)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type MoveUnitCommand struct { //nolint:recvcheck //using for validation
	warehouseID  kernel.UUID
	unitID       kernel.UUID
	targetCellID kernel.UUID
	source       movement.Source
	actor        kernel.Actor

	guard guard.ConstructorGuard
}

func NewMoveUnitCommand(
	warehouseID, unitID, targetCellID kernel.UUID,
	source movement.Source,
	actor kernel.Actor,
) (MoveUnitCommand, error) {
	cmd := MoveUnitCommand{
		source: source,
		actor:  actor,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(warehouseID, unitID, targetCellID),
		validateSource(source),
		actor.Validate(),
	); err != nil {
		return MoveUnitCommand{}, err
	}

	return cmd, nil
}

func (c MoveUnitCommand) Validate() error {
	return c.guard.Validate(ErrMoveUnitCommandIsNotConstructed)
}

func (c MoveUnitCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c MoveUnitCommand) UnitID() kernel.UUID {
	return c.unitID
}

func (c MoveUnitCommand) TargetCellID() kernel.UUID {
	return c.targetCellID
}

func (c MoveUnitCommand) Source() movement.Source {
	return c.source
}

func (c MoveUnitCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *MoveUnitCommand) setIDs(warehouseID, unitID, targetCellID kernel.UUID) error {
	if err := errors.Join(warehouseID.Validate(), unitID.Validate(), targetCellID.Validate()); err != nil {
		return err
	}

	c.warehouseID = warehouseID
	c.unitID = unitID
	c.targetCellID = targetCellID
	return nil
}

func validateSource(source movement.Source) error {
	_, err := movement.ParseSource(source.String())
	return err
}
