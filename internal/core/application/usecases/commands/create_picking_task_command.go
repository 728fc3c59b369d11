package commands

import (
	"errors"
	"fmt"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	ErrCreatePickingTaskCommandIsNotConstructed = errors.New(
		"CreatePickingTaskCommand must be created via NewCreatePickingTaskCommand constructor",
	)
	ErrUnitIDsAreRequired = errs.NewValueIsRequiredError("unit ids")
	ErrDuplicateUnitID    = errors.New("unit is listed more than once")
)

// CreatePickingTaskCommand asks for one task that moves a batch of units into
// a picking cell. The batch is all-or-nothing.
type CreatePickingTaskCommand struct { //nolint:recvcheck //using for validation
	warehouseID  kernel.UUID
	unitIDs      []kernel.UUID
	targetCellID kernel.UUID
	scenario     *string
	actor        kernel.Actor

	guard guard.ConstructorGuard
}

func NewCreatePickingTaskCommand(
	warehouseID kernel.UUID,
	unitIDs []kernel.UUID,
	targetCellID kernel.UUID,
	scenario *string,
	actor kernel.Actor,
) (CreatePickingTaskCommand, error) {
	cmd := CreatePickingTaskCommand{
		scenario: scenario,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		actor.Validate(),
		cmd.setWarehouseID(warehouseID),
		cmd.setTargetCellID(targetCellID),
		cmd.setUnitIDs(unitIDs),
	); err != nil {
		return CreatePickingTaskCommand{}, err
	}

	return cmd, nil
}

func (c CreatePickingTaskCommand) Validate() error {
	return c.guard.Validate(ErrCreatePickingTaskCommandIsNotConstructed)
}

func (c CreatePickingTaskCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c CreatePickingTaskCommand) UnitIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.unitIDs...)
}

func (c CreatePickingTaskCommand) TargetCellID() kernel.UUID {
	return c.targetCellID
}

func (c CreatePickingTaskCommand) Scenario() *string {
	return c.scenario
}

func (c CreatePickingTaskCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *CreatePickingTaskCommand) setWarehouseID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.warehouseID = id
	return nil
}

func (c *CreatePickingTaskCommand) setTargetCellID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.targetCellID = id
	return nil
}

func (c *CreatePickingTaskCommand) setUnitIDs(ids []kernel.UUID) error {
	if len(ids) == 0 {
		return ErrUnitIDsAreRequired
	}

	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, ok := seen[id]; ok {
			return errs.NewValueIsInvalidErrorWithCause("unit ids", fmt.Errorf("%w: %s", ErrDuplicateUnitID, id))
		}
		seen[id] = struct{}{}
	}

	c.unitIDs = append([]kernel.UUID(nil), ids...)
	return nil
}
