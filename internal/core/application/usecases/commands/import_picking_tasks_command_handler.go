package commands

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"
)

// ImportedTask is the successful outcome of one import row.
type ImportedTask struct {
	TaskID         kernel.UUID
	UnitID         kernel.UUID
	Barcode        kernel.Barcode
	TargetCellCode string
}

// ImportPickingTasksCommandHandler binds imported order barcodes to units and
// creates a single-unit task per row.
//
// Candidates are the units in storage or shipping cells that no open or
// in-progress task holds, read once before the first row. Each row then goes
// through the same creation path as direct creation, in its own transaction.
// A unit matched by one row is not offered to later rows.
type ImportPickingTasksCommandHandler struct {
	uowFactory TaskUoWFactory
	creator    taskCreator
	logger     *slog.Logger
}

func NewImportPickingTasksCommandHandler(
	uowFactory TaskUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ImportPickingTasksCommandHandler {
	logger = logger.With("component", "import_picking_tasks")
	return ImportPickingTasksCommandHandler{
		uowFactory: uowFactory,
		creator:    newTaskCreator(uowFactory, publisher, logger),
		logger:     logger,
	}
}

func (h ImportPickingTasksCommandHandler) Handle(
	ctx context.Context,
	command ImportPickingTasksCommand,
) (batch.Report[ImportedTask], error) {
	if err := command.Validate(); err != nil {
		return batch.Report[ImportedTask]{}, err
	}

	matcher, targets, err := h.prepare(ctx, command)
	if err != nil {
		return batch.Report[ImportedTask]{}, err
	}

	report := batch.Drain(h.importRows(ctx, command, matcher, targets))

	h.logger.InfoContext(ctx, "picking tasks imported",
		"warehouse_id", command.WarehouseID().String(),
		"rows", report.Total(),
		"created", len(report.Succeeded),
		"failed", len(report.Failed),
		"matchable_units", matcher.Len(),
		"ambiguous_keys", len(matcher.AmbiguousKeys()),
	)
	return report, nil
}

type targetLookup struct {
	cell *cell.Cell
	err  error
}

// prepare reads matching candidates and resolves every distinct target cell code.
func (h ImportPickingTasksCommandHandler) prepare(
	ctx context.Context,
	command ImportPickingTasksCommand,
) (services.OrderMatcher, map[string]targetLookup, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.OrderMatcher{}, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	candidates, err := uow.UnitRepository().ListInCellTypes(ctx, command.WarehouseID(), []cell.Type{cell.Storage, cell.Shipping})
	if err != nil {
		return services.OrderMatcher{}, nil, err
	}
	attached, err := uow.TaskRepository().ListActiveUnitIDs(ctx, command.WarehouseID())
	if err != nil {
		return services.OrderMatcher{}, nil, err
	}

	targets := make(map[string]targetLookup)
	for _, row := range command.Rows() {
		code := strings.TrimSpace(row.TargetCellCode)
		if _, seen := targets[code]; seen || code == "" {
			continue
		}
		c, err := uow.CellRepository().GetByCode(ctx, command.WarehouseID(), code)
		targets[code] = targetLookup{cell: c, err: err}
	}

	return services.NewOrderMatcher(candidates, attached), targets, nil
}

func (h ImportPickingTasksCommandHandler) importRows(
	ctx context.Context,
	command ImportPickingTasksCommand,
	matcher services.OrderMatcher,
	targets map[string]targetLookup,
) iter.Seq[batch.Outcome[ImportedTask]] {
	return func(yield func(batch.Outcome[ImportedTask]) bool) {
		claimed := make(map[kernel.UUID]int)

		for i, row := range command.Rows() {
			imported, err := h.importRow(ctx, command, i, row, matcher, targets, claimed)

			var outcome batch.Outcome[ImportedTask]
			if err != nil {
				outcome = batch.Fail[ImportedTask](i, row.Barcode, fmt.Errorf("row %d: %w", i+1, err))
			} else {
				outcome = batch.Ok(i, row.Barcode, imported)
			}
			if !yield(outcome) {
				return
			}
		}
	}
}

func (h ImportPickingTasksCommandHandler) importRow(
	ctx context.Context,
	command ImportPickingTasksCommand,
	index int,
	row ImportRow,
	matcher services.OrderMatcher,
	targets map[string]targetLookup,
	claimed map[kernel.UUID]int,
) (ImportedTask, error) {
	if err := ctx.Err(); err != nil {
		return ImportedTask{}, err
	}

	code := strings.TrimSpace(row.TargetCellCode)
	if code == "" {
		return ImportedTask{}, errs.NewValueIsRequiredError("target cell code")
	}
	target := targets[code]
	if target.err != nil {
		return ImportedTask{}, target.err
	}

	u, err := matcher.Match(row.Barcode)
	if err != nil {
		return ImportedTask{}, err
	}
	if prev, ok := claimed[u.ID()]; ok {
		return ImportedTask{}, fmt.Errorf("%w: %q already taken by row %d", services.ErrNoAvailableUnit, row.Barcode, prev+1)
	}

	scenario := command.Scenario()
	if row.Scenario != nil {
		scenario = row.Scenario
	}

	t, err := h.creator.create(ctx, taskDraft{
		warehouseID:  command.WarehouseID(),
		unitIDs:      []kernel.UUID{u.ID()},
		targetCellID: target.cell.ID(),
		scenario:     scenario,
		actor:        command.Actor(),
		kind:         history.KindTaskImported,
		meta:         map[string]any{"row": index + 1, "order": row.Barcode},
	})
	if err != nil {
		return ImportedTask{}, err
	}

	claimed[u.ID()] = index
	return ImportedTask{
		TaskID:         t.ID(),
		UnitID:         u.ID(),
		Barcode:        u.Barcode(),
		TargetCellCode: target.cell.Code(),
	}, nil
}
