package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

var (
	ErrImportPickingTasksCommandIsNotConstructed = errors.New(
		"ImportPickingTasksCommand must be created via NewImportPickingTasksCommand constructor",
	)
	ErrImportRowsAreRequired = errs.NewValueIsRequiredError("import rows")
)

// ImportRow is one line of an order import: an external order barcode and
// the picking cell its unit must go to.
type ImportRow struct {
	Barcode        string
	TargetCellCode string
	// Scenario overrides the command default when set.
	Scenario *string
}

// ImportPickingTasksCommand creates one single-unit task per row. Rows are
// validated while importing so a bad row never rejects the others.
type ImportPickingTasksCommand struct { //nolint:recvcheck //using for validation
	warehouseID kernel.UUID
	rows        []ImportRow
	scenario    *string
	actor       kernel.Actor

	guard guard.ConstructorGuard
}

func NewImportPickingTasksCommand(
	warehouseID kernel.UUID,
	rows []ImportRow,
	scenario *string,
	actor kernel.Actor,
) (ImportPickingTasksCommand, error) {
	if err := errors.Join(warehouseID.Validate(), actor.Validate()); err != nil {
		return ImportPickingTasksCommand{}, err
	}
	if len(rows) == 0 {
		return ImportPickingTasksCommand{}, ErrImportRowsAreRequired
	}

	return ImportPickingTasksCommand{
		warehouseID: warehouseID,
		rows:        append([]ImportRow(nil), rows...),
		scenario:    scenario,
		actor:       actor,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ImportPickingTasksCommand) Validate() error {
	return c.guard.Validate(ErrImportPickingTasksCommandIsNotConstructed)
}

func (c ImportPickingTasksCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c ImportPickingTasksCommand) Rows() []ImportRow {
	return append([]ImportRow(nil), c.rows...)
}

func (c ImportPickingTasksCommand) Scenario() *string {
	return c.scenario
}

func (c ImportPickingTasksCommand) Actor() kernel.Actor {
	return c.actor
}
