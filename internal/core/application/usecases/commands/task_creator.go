package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/errs"
)

// taskDraft is what both direct creation and import hand to the creator.
type taskDraft struct {
	warehouseID  kernel.UUID
	unitIDs      []kernel.UUID
	targetCellID kernel.UUID
	scenario     *string
	actor        kernel.Actor
	kind         history.Kind
	meta         map[string]any
}

// taskCreator validates a draft and stores it as an open task in one unit of work.
type taskCreator struct {
	uowFactory TaskUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func newTaskCreator(uowFactory TaskUoWFactory, publisher ports.EventPublisher, logger *slog.Logger) taskCreator {
	return taskCreator{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c taskCreator) create(ctx context.Context, draft taskDraft) (*task.Task, error) {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cellRepo := uow.CellRepository()

	target, err := cellRepo.Get(ctx, draft.targetCellID)
	if err != nil {
		return nil, err
	}
	if err = checkPickingTarget(target, draft.warehouseID); err != nil {
		return nil, err
	}

	units, err := uow.UnitRepository().GetMany(ctx, draft.unitIDs)
	if err != nil {
		return nil, err
	}
	if err = checkAllFound(draft.warehouseID, draft.unitIDs, units); err != nil {
		return nil, err
	}

	cells, err := cellRepo.GetMany(ctx, currentCellIDs(units))
	if err != nil {
		return nil, err
	}
	cellByID := indexCells(cells)
	if err = checkPickable(units, cellByID); err != nil {
		return nil, err
	}

	members := make([]task.Unit, 0, len(units))
	for _, u := range units {
		member, err := task.NewUnit(u.ID(), u.CellID())
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	now := c.now()
	t, err := task.NewTask(kernel.NewUUID(), draft.warehouseID, target.ID(), draft.scenario, members, draft.actor.ID(), now)
	if err != nil {
		return nil, err
	}

	saga := newCreationSaga(uow.TaskRepository(), t)
	if err = saga.Run(ctx); err != nil {
		return nil, err
	}

	meta := map[string]any{"units": len(members), "target_cell": target.Code()}
	for k, v := range draft.meta {
		meta[k] = v
	}
	taskID := t.ID()
	event, err := history.NewEvent(draft.warehouseID, &taskID, draft.kind, draft.actor.ID(),
		fmt.Sprintf("picking task for %d unit(s) into %s", len(members), target.Code()), meta, now)
	if err != nil {
		return nil, err
	}
	if err = uow.HistoryRepository().Add(ctx, event); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publish(ctx, c.publisher, c.logger, event)
	return t, nil
}

func checkPickingTarget(target *cell.Cell, warehouseID kernel.UUID) error {
	if !target.BelongsTo(warehouseID) {
		return fmt.Errorf("%w: cell %s", ErrCrossWarehouse, target.ID())
	}
	if target.Type() != cell.Picking {
		return fmt.Errorf("%w: target cell %s is %s, picking required", ErrWrongCellType, target.Code(), target.Type())
	}
	if !target.IsActive() {
		return fmt.Errorf("%w: target cell %s is inactive", ErrCellUnavailable, target.Code())
	}
	return nil
}

// checkAllFound names every requested unit that is missing or foreign.
func checkAllFound(warehouseID kernel.UUID, requested []kernel.UUID, found []*unit.Unit) error {
	byID := make(map[kernel.UUID]*unit.Unit, len(found))
	for _, u := range found {
		byID[u.ID()] = u
	}

	var missing, foreign []string
	for _, id := range requested {
		u, ok := byID[id]
		switch {
		case !ok:
			missing = append(missing, id.String())
		case !u.BelongsTo(warehouseID):
			foreign = append(foreign, id.String())
		}
	}

	var result []error
	if len(missing) > 0 {
		result = append(result, errs.NewObjectNotFoundError("units", strings.Join(missing, ", ")))
	}
	if len(foreign) > 0 {
		result = append(result, fmt.Errorf("%w: units %s", ErrCrossWarehouse, strings.Join(foreign, ", ")))
	}
	return errors.Join(result...)
}

// checkPickable rejects the batch if any unit is not stored or waiting for
// shipping, listing every offender.
func checkPickable(units []*unit.Unit, cellByID map[kernel.UUID]*cell.Cell) error {
	var offenders []string
	for _, u := range units {
		cellID := u.CellID()
		if cellID == nil {
			offenders = append(offenders, fmt.Sprintf("%s has no cell", u.Barcode()))
			continue
		}
		c, ok := cellByID[*cellID]
		if !ok {
			offenders = append(offenders, fmt.Sprintf("%s is in unknown cell %s", u.Barcode(), cellID))
			continue
		}
		if !isPickableFrom(c.Type()) {
			offenders = append(offenders, fmt.Sprintf("%s is in %s cell %s", u.Barcode(), c.Type(), c.Code()))
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnitsNotPickable, strings.Join(offenders, "; "))
}

func isPickableFrom(t cell.Type) bool {
	return t == cell.Storage || t == cell.Shipping
}

func currentCellIDs(units []*unit.Unit) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(units))
	for _, u := range units {
		if id := u.CellID(); id != nil && !slices.Contains(ids, *id) {
			ids = append(ids, *id)
		}
	}
	return ids
}

func indexCells(cells []*cell.Cell) map[kernel.UUID]*cell.Cell {
	byID := make(map[kernel.UUID]*cell.Cell, len(cells))
	for _, c := range cells {
		byID[c.ID()] = c
	}
	return byID
}

// publish hands committed events to the publisher. Failures are logged only:
// the history table already holds the events.
func publish(ctx context.Context, publisher ports.EventPublisher, logger *slog.Logger, events ...*history.Event) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.WarnContext(ctx, "failed to publish task events", "count", len(events), "error", err)
	}
}
