package commands_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f pickingFixture) agedTask(t *testing.T, age time.Duration, scenario *string, u *unit.Unit) *task.Task {
	t.Helper()
	m, err := task.NewUnit(u.ID(), u.CellID())
	require.NoError(t, err)
	return f.store.putTask(t, task.Snapshot{
		ID:           kernel.NewUUID(),
		WarehouseID:  f.warehouseID,
		TargetCellID: f.picking.ID(),
		Scenario:     scenario,
		Status:       task.Open,
		CreatedBy:    "manager-1",
		CreatedAt:    time.Now().UTC().Add(-age),
		Units:        []task.Unit{m},
	})
}

func (f pickingFixture) sweepHandler(publisher *recordingPublisher) commands.CloseStaleTasksCommandHandler {
	return commands.NewCloseStaleTasksCommandHandler(f.store.taskFactory(), publisher, discardLogger())
}

func TestNewCloseStaleTasksCommand(t *testing.T) {
	admin := mustActor(t, "admin-1", kernel.RoleAdmin)

	t.Run("worker is forbidden", func(t *testing.T) {
		_, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, mustActor(t, "w", kernel.RoleWorker))
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("manager is forbidden", func(t *testing.T) {
		_, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, mustActor(t, "m", kernel.RoleManager))
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("scheduler is allowed", func(t *testing.T) {
		_, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, kernel.SystemActor("stale-sweep"))
		require.NoError(t, err)
	})

	for _, days := range []int{0, -1, 3651} {
		_, err := commands.NewCloseStaleTasksCommand(days, nil, nil, false, admin)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, "days %d", days)
	}

	blank := "  "
	cmd, err := commands.NewCloseStaleTasksCommand(3650, nil, &blank, false, admin)
	require.NoError(t, err)
	assert.Nil(t, cmd.Scenario())
}

func TestCloseStaleTasksCommandHandler_Handle(t *testing.T) {
	f := newPickingFixture(t)
	old := f.agedTask(t, 10*24*time.Hour, nil, f.store.addUnit(t, f.warehouseID, "1", f.storage))
	fresh := f.agedTask(t, time.Hour, nil, f.store.addUnit(t, f.warehouseID, "2", f.storage))
	picked := f.store.addUnit(t, f.warehouseID, "3", f.picking)
	oldPicked := f.agedTask(t, 10*24*time.Hour, nil, picked)
	publisher := &recordingPublisher{}

	cmd, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, mustActor(t, "admin-1", kernel.RoleAdmin))
	require.NoError(t, err)

	result, err := f.sweepHandler(publisher).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Eligible)
	assert.Equal(t, 1, result.Closed)

	closed := f.store.task(t, old.ID())
	assert.Equal(t, task.Done, closed.Status())
	assert.Equal(t, "admin-1", *closed.CompletedBy())
	assert.Contains(t, *closed.CloseNote(), "older than 7 day(s)")
	assert.Equal(t, task.Open, f.store.task(t, fresh.ID()).Status())
	assert.Equal(t, task.Open, f.store.task(t, oldPicked.ID()).Status())
	assert.Equal(t, []history.Kind{history.KindTaskForceClosed}, publisher.kinds())

	// Units are never moved by the sweep.
	assert.Empty(t, f.store.moves())

	again, err := f.sweepHandler(publisher).Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Zero(t, again.Closed)
	assert.Len(t, publisher.kinds(), 1)
}

func TestCloseStaleTasksCommandHandler_Handle_IncludePicking(t *testing.T) {
	f := newPickingFixture(t)
	oldPicked := f.agedTask(t, 10*24*time.Hour, nil, f.store.addUnit(t, f.warehouseID, "3", f.picking))

	cmd, err := commands.NewCloseStaleTasksCommand(7, nil, nil, true, kernel.SystemActor("stale-sweep"))
	require.NoError(t, err)

	result, err := f.sweepHandler(&recordingPublisher{}).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Closed)
	assert.Equal(t, task.Done, f.store.task(t, oldPicked.ID()).Status())
	assert.Equal(t, "system:stale-sweep", *f.store.task(t, oldPicked.ID()).CompletedBy())
}

func TestCloseStaleTasksCommandHandler_Handle_Filters(t *testing.T) {
	f := newPickingFixture(t)
	marketplace := "marketplace"
	express := "express"
	matching := f.agedTask(t, 30*24*time.Hour, &marketplace, f.store.addUnit(t, f.warehouseID, "1", f.storage))
	otherScenario := f.agedTask(t, 30*24*time.Hour, &express, f.store.addUnit(t, f.warehouseID, "2", f.storage))

	other := newPickingFixture(t)
	other.store = f.store
	otherWarehouse := kernel.NewUUID()
	foreignUnit := f.store.addUnit(t, otherWarehouse, "3", nil)
	other.warehouseID = otherWarehouse
	foreign := other.agedTask(t, 30*24*time.Hour, &marketplace, foreignUnit)

	warehouseID := f.warehouseID
	cmd, err := commands.NewCloseStaleTasksCommand(7, &warehouseID, &marketplace, false, mustActor(t, "admin-1", kernel.RoleAdmin))
	require.NoError(t, err)

	result, err := f.sweepHandler(&recordingPublisher{}).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Closed)
	assert.Equal(t, task.Done, f.store.task(t, matching.ID()).Status())
	assert.Equal(t, task.Open, f.store.task(t, otherScenario.ID()).Status())
	assert.Equal(t, task.Open, f.store.task(t, foreign.ID()).Status())
}

func TestCloseStaleTasksCommandHandler_Handle_SkipsClosedTasks(t *testing.T) {
	f := newPickingFixture(t)
	u := f.store.addUnit(t, f.warehouseID, "1", f.storage)
	m, err := task.NewUnit(u.ID(), u.CellID())
	require.NoError(t, err)
	canceled := f.store.putTask(t, task.Snapshot{
		ID:           kernel.NewUUID(),
		WarehouseID:  f.warehouseID,
		TargetCellID: f.picking.ID(),
		Status:       task.Canceled,
		CreatedBy:    "manager-1",
		CreatedAt:    time.Now().AddDate(0, 0, -30),
		Units:        []task.Unit{m},
	})

	cmd, err := commands.NewCloseStaleTasksCommand(1, nil, nil, true, mustActor(t, "admin-1", kernel.RoleAdmin))
	require.NoError(t, err)

	result, err := f.sweepHandler(&recordingPublisher{}).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Equal(t, task.Canceled, f.store.task(t, canceled.ID()).Status())
}

func TestCloseStaleTasksCommandHandler_Handle_ContinuesAfterFailedChunk(t *testing.T) {
	f := newPickingFixture(t)
	errStore := errors.New("connection reset")
	f.store.forceCloseErrs = []error{errStore}
	tasks := make([]*task.Task, 0, batch.ChunkSize+50)
	for i := range batch.ChunkSize + 50 {
		u := f.store.addUnit(t, f.warehouseID, fmt.Sprintf("B-%03d", i), f.storage)
		tasks = append(tasks, f.agedTask(t, 30*24*time.Hour, nil, u))
	}
	publisher := &recordingPublisher{}

	cmd, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, kernel.SystemActor("stale-sweep"))
	require.NoError(t, err)

	result, err := f.sweepHandler(publisher).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, f.store.forceCloseCalls)
	assert.Equal(t, 250, result.Eligible)
	assert.Equal(t, 50, result.Closed)
	require.Len(t, result.Failed, batch.ChunkSize)
	assert.Len(t, publisher.kinds(), 50)

	for _, failure := range result.Failed {
		require.ErrorIs(t, failure.Err, errStore)
		id, err := kernel.UUIDFromString(failure.Key)
		require.NoError(t, err)
		assert.Equal(t, task.Open, f.store.task(t, id).Status())
	}
	done := 0
	for _, tk := range tasks {
		if f.store.task(t, tk.ID()).Status() == task.Done {
			done++
		}
	}
	assert.Equal(t, 50, done)
}

func TestCloseStaleTasksCommandHandler_Handle_NoEventForConcurrentlyCanceledTask(t *testing.T) {
	f := newPickingFixture(t)
	kept := f.agedTask(t, 30*24*time.Hour, nil, f.store.addUnit(t, f.warehouseID, "1", f.storage))
	raced := f.agedTask(t, 30*24*time.Hour, nil, f.store.addUnit(t, f.warehouseID, "2", f.storage))
	f.store.beforeForceClose = func(tasks map[kernel.UUID]task.Snapshot) {
		s := tasks[raced.ID()]
		s.Status = task.Canceled
		tasks[raced.ID()] = s
	}
	publisher := &recordingPublisher{}

	cmd, err := commands.NewCloseStaleTasksCommand(7, nil, nil, false, mustActor(t, "admin-1", kernel.RoleAdmin))
	require.NoError(t, err)

	result, err := f.sweepHandler(publisher).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Eligible)
	assert.Equal(t, 1, result.Closed)
	assert.Empty(t, result.Failed)
	assert.Equal(t, task.Canceled, f.store.task(t, raced.ID()).Status())

	events := f.store.events()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].TaskID())
	assert.Equal(t, kept.ID(), *events[0].TaskID())
	assert.Equal(t, []history.Kind{history.KindTaskForceClosed}, publisher.kinds())
}
