package commands

import (
	"errors"
	"fmt"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	ErrChangeCellStateCommandIsNotConstructed = errors.New(
		"ChangeCellStateCommand must be created via NewChangeCellStateCommand constructor",
	)
	ErrUnknownCellAction = errors.New("unknown cell action")
)

// CellAction is a change of the active or blocked flag of a cell.
type CellAction string

const (
	CellActivate   CellAction = "activate"
	CellDeactivate CellAction = "deactivate"
	CellBlock      CellAction = "block"
	CellUnblock    CellAction = "unblock"
)

// ParseCellAction maps a request value to a CellAction.
func ParseCellAction(raw string) (CellAction, error) {
	switch a := CellAction(raw); a {
	case CellActivate, CellDeactivate, CellBlock, CellUnblock:
		return a, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("cell action", fmt.Errorf("%w: %q", ErrUnknownCellAction, raw))
	}
}

// ChangeCellStateCommand activates, deactivates, blocks or unblocks a cell.
type ChangeCellStateCommand struct { //nolint:recvcheck //using for validation
	warehouseID kernel.UUID
	cellID      kernel.UUID
	action      CellAction
	actor       kernel.Actor

	guard guard.ConstructorGuard
}

func NewChangeCellStateCommand(warehouseID, cellID kernel.UUID, action CellAction, actor kernel.Actor) (ChangeCellStateCommand, error) {
	_, actionErr := ParseCellAction(string(action))
	if err := errors.Join(warehouseID.Validate(), cellID.Validate(), actionErr, actor.Validate()); err != nil {
		return ChangeCellStateCommand{}, err
	}

	return ChangeCellStateCommand{
		warehouseID: warehouseID,
		cellID:      cellID,
		action:      action,
		actor:       actor,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeCellStateCommand) Validate() error {
	return c.guard.Validate(ErrChangeCellStateCommandIsNotConstructed)
}

func (c ChangeCellStateCommand) WarehouseID() kernel.UUID { return c.warehouseID }
func (c ChangeCellStateCommand) CellID() kernel.UUID      { return c.cellID }
func (c ChangeCellStateCommand) Action() CellAction       { return c.action }
func (c ChangeCellStateCommand) Actor() kernel.Actor      { return c.actor }
