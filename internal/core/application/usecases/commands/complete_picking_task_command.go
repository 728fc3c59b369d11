package commands

import (
	"errors"
	"strings"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var ErrCompletePickingTaskCommandIsNotConstructed = errors.New(
	"CompletePickingTaskCommand must be created via NewCompletePickingTaskCommand constructor",
)

// CompletePickingTaskCommand reports that a worker carried one unit of a task
// from fromCellCode to toCellCode. The codes are what the worker's device
// shows; they must match the stored state.
type CompletePickingTaskCommand struct { //nolint:recvcheck //using for validation
	warehouseID  kernel.UUID
	taskID       kernel.UUID
	fromCellCode string
	toCellCode   string
	barcode      kernel.Barcode
	actor        kernel.Actor

	guard guard.ConstructorGuard
}

func NewCompletePickingTaskCommand(
	warehouseID, taskID kernel.UUID,
	fromCellCode, toCellCode, barcode string,
	actor kernel.Actor,
) (CompletePickingTaskCommand, error) {
	normalized, barcodeErr := kernel.NewBarcode(barcode)

	if err := errors.Join(
		warehouseID.Validate(),
		taskID.Validate(),
		requireCode("from cell code", fromCellCode),
		requireCode("to cell code", toCellCode),
		barcodeErr,
		actor.Validate(),
	); err != nil {
		return CompletePickingTaskCommand{}, err
	}

	return CompletePickingTaskCommand{
		warehouseID:  warehouseID,
		taskID:       taskID,
		fromCellCode: strings.TrimSpace(fromCellCode),
		toCellCode:   strings.TrimSpace(toCellCode),
		barcode:      normalized,
		actor:        actor,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c CompletePickingTaskCommand) Validate() error {
	return c.guard.Validate(ErrCompletePickingTaskCommandIsNotConstructed)
}

func (c CompletePickingTaskCommand) WarehouseID() kernel.UUID { return c.warehouseID }
func (c CompletePickingTaskCommand) TaskID() kernel.UUID      { return c.taskID }
func (c CompletePickingTaskCommand) FromCellCode() string     { return c.fromCellCode }
func (c CompletePickingTaskCommand) ToCellCode() string       { return c.toCellCode }
func (c CompletePickingTaskCommand) Barcode() kernel.Barcode  { return c.barcode }
func (c CompletePickingTaskCommand) Actor() kernel.Actor      { return c.actor }

func requireCode(name, code string) error {
	if strings.TrimSpace(code) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
