package commands

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/batch"
)

// SweepResult summarizes one stale-task sweep.
type SweepResult struct {
	Cutoff   time.Time
	Scanned  int
	Eligible int
	Closed   int
	// Failed lists eligible tasks whose chunk could not be closed.
	Failed []batch.Outcome[kernel.UUID]
}

// CloseStaleTasksCommandHandler force-closes active tasks created before a
// cutoff whose units never reached a picking cell.
//
// Tasks are read in pages ordered by id; members of each page are resolved in
// chunked lookups and eligible tasks are closed in chunks, each chunk in its
// own transaction. A failed chunk is recorded in the result and the sweep
// moves on. Closing only touches tasks that are still active, so running the
// sweep again with the same cutoff closes nothing new.
type CloseStaleTasksCommandHandler struct {
	uowFactory TaskUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewCloseStaleTasksCommandHandler(
	uowFactory TaskUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CloseStaleTasksCommandHandler {
	return CloseStaleTasksCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "close_stale_tasks"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h CloseStaleTasksCommandHandler) Handle(ctx context.Context, command CloseStaleTasksCommand) (SweepResult, error) {
	if err := command.Validate(); err != nil {
		return SweepResult{}, err
	}

	now := h.now()
	result := SweepResult{Cutoff: now.AddDate(0, 0, -command.OlderThanDays())}
	filter := ports.StaleTaskFilter{
		CreatedBefore: result.Cutoff,
		WarehouseID:   command.WarehouseID(),
		Scenario:      command.Scenario(),
	}
	policy := services.NewStaleTaskPolicy(command.IncludePicking())
	note := fmt.Sprintf("closed as stale: older than %d day(s)", command.OlderThanDays())

	var after *kernel.UUID
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, cellTypeOf, err := h.readPage(ctx, filter, after)
		if err != nil {
			return result, err
		}
		if len(page) == 0 {
			break
		}
		result.Scanned += len(page)
		lastID := page[len(page)-1].ID()
		after = &lastID

		eligible := make([]*task.Task, 0, len(page))
		for _, t := range page {
			if policy.IsEligible(t, result.Cutoff, cellTypeOf) {
				eligible = append(eligible, t)
			}
		}
		report := batch.Drain(h.closeEligible(ctx, eligible, result.Eligible, command.Actor(), note, now))
		result.Eligible += len(eligible)
		result.Closed += len(report.Succeeded)
		result.Failed = append(result.Failed, report.Failed...)
		if len(report.Succeeded) > 0 {
			h.logger.DebugContext(ctx, "stale tasks closed", "task_ids", report.Values())
		}

		if len(page) < batch.PageSize {
			break
		}
	}

	h.logger.InfoContext(ctx, "stale task sweep finished",
		"cutoff", result.Cutoff,
		"scanned", result.Scanned,
		"eligible", result.Eligible,
		"closed", result.Closed,
		"failed", len(result.Failed),
		"actor", command.Actor().String(),
	)
	return result, nil
}

// readPage reads one page of stale tasks and the cell types of their units.
func (h CloseStaleTasksCommandHandler) readPage(
	ctx context.Context,
	filter ports.StaleTaskFilter,
	after *kernel.UUID,
) ([]*task.Task, services.CellTypeLookup, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	page, err := uow.TaskRepository().ListStale(ctx, filter, after, batch.PageSize)
	if err != nil {
		return nil, nil, err
	}

	var memberIDs []kernel.UUID
	for _, t := range page {
		memberIDs = append(memberIDs, t.MemberUnitIDs()...)
	}
	units, err := uow.UnitRepository().GetMany(ctx, memberIDs)
	if err != nil {
		return nil, nil, err
	}
	cells, err := uow.CellRepository().GetMany(ctx, currentCellIDs(units))
	if err != nil {
		return nil, nil, err
	}

	cellByID := indexCells(cells)
	typeByUnit := make(map[kernel.UUID]cell.Type, len(units))
	for _, u := range units {
		if id := u.CellID(); id != nil {
			if c, ok := cellByID[*id]; ok {
				typeByUnit[u.ID()] = c.Type()
			}
		}
	}

	return page, func(unitID kernel.UUID) (cell.Type, bool) {
		t, ok := typeByUnit[unitID]
		return t, ok
	}, nil
}

// closeEligible closes eligible tasks chunk by chunk. Every task of a failed
// chunk yields a failure; tasks the store no longer considered active yield
// nothing.
func (h CloseStaleTasksCommandHandler) closeEligible(
	ctx context.Context,
	eligible []*task.Task,
	offset int,
	actor kernel.Actor,
	note string,
	now time.Time,
) iter.Seq[batch.Outcome[kernel.UUID]] {
	return func(yield func(batch.Outcome[kernel.UUID]) bool) {
		index := offset
		for chunk := range slices.Chunk(eligible, batch.ChunkSize) {
			closed, err := h.closeChunk(ctx, chunk, actor, note, now)
			if err != nil {
				h.logger.ErrorContext(ctx, "stale task chunk not closed",
					"tasks", len(chunk),
					"first_task_id", chunk[0].ID().String(),
					"error", err,
				)
			}
			isClosed := make(map[kernel.UUID]bool, len(closed))
			for _, id := range closed {
				isClosed[id] = true
			}
			for _, t := range chunk {
				var outcome batch.Outcome[kernel.UUID]
				switch {
				case err != nil:
					outcome = batch.Fail[kernel.UUID](index, t.ID().String(), err)
				case isClosed[t.ID()]:
					outcome = batch.Ok(index, t.ID().String(), t.ID())
				default:
					index++
					continue
				}
				index++
				if !yield(outcome) {
					return
				}
			}
		}
	}
}

// closeChunk closes one chunk in its own transaction and returns the ids the
// store actually closed. History events are written only for those ids.
func (h CloseStaleTasksCommandHandler) closeChunk(
	ctx context.Context,
	chunk []*task.Task,
	actor kernel.Actor,
	note string,
	now time.Time,
) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(chunk))
	byID := make(map[kernel.UUID]*task.Task, len(chunk))
	for _, t := range chunk {
		if err := t.ForceClose(actor.ID(), note, now); err != nil {
			continue
		}
		ids = append(ids, t.ID())
		byID[t.ID()] = t
	}
	if len(ids) == 0 {
		return nil, nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	closed, err := uow.TaskRepository().ForceCloseMany(ctx, ids, actor.ID(), note, now)
	if err != nil {
		return nil, err
	}

	events := make([]*history.Event, 0, len(closed))
	historyRepo := uow.HistoryRepository()
	for _, id := range closed {
		t, ok := byID[id]
		if !ok {
			continue
		}
		taskID := t.ID()
		event, err := history.NewEvent(t.WarehouseID(), &taskID, history.KindTaskForceClosed, actor.ID(), note,
			map[string]any{"created_at": t.CreatedAt(), "units": len(t.MemberUnitIDs())}, now)
		if err != nil {
			return nil, err
		}
		if err = historyRepo.Add(ctx, event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publish(ctx, h.publisher, h.logger, events...)
	return closed, nil
}
