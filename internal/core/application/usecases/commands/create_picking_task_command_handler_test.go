package commands_test

import (
	"errors"
	"testing"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickingFixture struct {
	store       *memStore
	warehouseID kernel.UUID
	storage     *cell.Cell
	shipping    *cell.Cell
	picking     *cell.Cell
	manager     kernel.Actor
}

func newPickingFixture(t *testing.T) pickingFixture {
	t.Helper()
	store := newMemStore()
	warehouseID := kernel.NewUUID()
	return pickingFixture{
		store:       store,
		warehouseID: warehouseID,
		storage:     store.addCell(t, warehouseID, "S-01", cell.Storage),
		shipping:    store.addCell(t, warehouseID, "SH-01", cell.Shipping),
		picking:     store.addCell(t, warehouseID, "P-01", cell.Picking),
		manager:     mustActor(t, "manager-1", kernel.RoleManager),
	}
}

func (f pickingFixture) createHandler(publisher *recordingPublisher) commands.CreatePickingTaskCommandHandler {
	return commands.NewCreatePickingTaskCommandHandler(f.store.taskFactory(), publisher, discardLogger())
}

func (f pickingFixture) createCommand(t *testing.T, target kernel.UUID, unitIDs ...kernel.UUID) commands.CreatePickingTaskCommand {
	t.Helper()
	cmd, err := commands.NewCreatePickingTaskCommand(f.warehouseID, unitIDs, target, nil, f.manager)
	require.NoError(t, err)
	return cmd
}

func TestNewCreatePickingTaskCommand(t *testing.T) {
	warehouseID := kernel.NewUUID()
	actor := mustActor(t, "manager-1", kernel.RoleManager)
	id := kernel.NewUUID()

	t.Run("no units", func(t *testing.T) {
		_, err := commands.NewCreatePickingTaskCommand(warehouseID, nil, kernel.NewUUID(), nil, actor)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("duplicate unit", func(t *testing.T) {
		_, err := commands.NewCreatePickingTaskCommand(warehouseID, []kernel.UUID{id, id}, kernel.NewUUID(), nil, actor)
		require.ErrorIs(t, err, commands.ErrDuplicateUnitID)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("no actor", func(t *testing.T) {
		_, err := commands.NewCreatePickingTaskCommand(warehouseID, []kernel.UUID{id}, kernel.NewUUID(), nil, kernel.Actor{})
		require.ErrorIs(t, err, kernel.ErrActorIsRequired)
	})

	t.Run("unit ids are copied", func(t *testing.T) {
		ids := []kernel.UUID{id}
		cmd, err := commands.NewCreatePickingTaskCommand(warehouseID, ids, kernel.NewUUID(), nil, actor)
		require.NoError(t, err)
		ids[0] = kernel.NewUUID()
		assert.Equal(t, []kernel.UUID{id}, cmd.UnitIDs())
	})
}

func TestCreatePickingTaskCommandHandler_Handle(t *testing.T) {
	f := newPickingFixture(t)
	stored := f.store.addUnit(t, f.warehouseID, "100", f.storage)
	waiting := f.store.addUnit(t, f.warehouseID, "200", f.shipping)
	publisher := &recordingPublisher{}

	created, err := f.createHandler(publisher).Handle(t.Context(), f.createCommand(t, f.picking.ID(), stored.ID(), waiting.ID()))

	require.NoError(t, err)
	assert.Equal(t, task.Open, created.Status())

	persisted := f.store.task(t, created.ID())
	assert.Equal(t, task.Open, persisted.Status())
	assert.Equal(t, f.picking.ID(), persisted.TargetCellID())
	assert.Equal(t, "manager-1", persisted.CreatedBy())
	require.Len(t, persisted.Units(), 2)
	from := map[kernel.UUID]kernel.UUID{}
	for _, m := range persisted.Units() {
		require.NotNil(t, m.FromCellID())
		from[m.UnitID()] = *m.FromCellID()
	}
	assert.Equal(t, f.storage.ID(), from[stored.ID()])
	assert.Equal(t, f.shipping.ID(), from[waiting.ID()])

	events := f.store.events()
	require.Len(t, events, 1)
	assert.Equal(t, history.KindTaskCreated, events[0].Kind())
	assert.Equal(t, []history.Kind{history.KindTaskCreated}, publisher.kinds())

	// Units stay where they are until the task is completed.
	assert.True(t, f.store.unit(t, stored.ID()).IsIn(f.storage.ID()))
	assert.Empty(t, f.store.moves())
}

func TestCreatePickingTaskCommandHandler_Handle_RejectsWholeBatch(t *testing.T) {
	f := newPickingFixture(t)
	bin := f.store.addCell(t, f.warehouseID, "BIN-1", cell.Bin)
	good := f.store.addUnit(t, f.warehouseID, "100", f.storage)
	inBin := f.store.addUnit(t, f.warehouseID, "300", bin)
	nowhere := f.store.addUnit(t, f.warehouseID, "400", nil)

	_, err := f.createHandler(&recordingPublisher{}).Handle(t.Context(), f.createCommand(t, f.picking.ID(), good.ID(), inBin.ID(), nowhere.ID()))

	require.ErrorIs(t, err, commands.ErrUnitsNotPickable)
	assert.Contains(t, err.Error(), "300 is in bin cell BIN-1")
	assert.Contains(t, err.Error(), "400 has no cell")
	assert.NotContains(t, err.Error(), "100")
	assert.Zero(t, f.store.taskCount())
	assert.Empty(t, f.store.events())
}

func TestCreatePickingTaskCommandHandler_Handle_MissingAndForeignUnits(t *testing.T) {
	f := newPickingFixture(t)
	foreign := f.store.addUnit(t, kernel.NewUUID(), "500", nil)
	missing := kernel.NewUUID()

	_, err := f.createHandler(&recordingPublisher{}).Handle(t.Context(), f.createCommand(t, f.picking.ID(), missing, foreign.ID()))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	require.ErrorIs(t, err, commands.ErrCrossWarehouse)
	assert.Contains(t, err.Error(), missing.String())
	assert.Contains(t, err.Error(), foreign.ID().String())
	assert.Zero(t, f.store.taskCount())
}

func TestCreatePickingTaskCommandHandler_Handle_InvalidTarget(t *testing.T) {
	testCases := []struct {
		name    string
		target  func(t *testing.T, f pickingFixture) kernel.UUID
		wantErr error
	}{
		{
			name:    "not a picking cell",
			target:  func(_ *testing.T, f pickingFixture) kernel.UUID { return f.shipping.ID() },
			wantErr: commands.ErrWrongCellType,
		},
		{
			name: "inactive picking cell",
			target: func(_ *testing.T, f pickingFixture) kernel.UUID {
				f.picking.Deactivate()
				f.store.updateCell(f.picking)
				return f.picking.ID()
			},
			wantErr: commands.ErrCellUnavailable,
		},
		{
			name: "picking cell of another warehouse",
			target: func(t *testing.T, f pickingFixture) kernel.UUID {
				return f.store.addCell(t, kernel.NewUUID(), "P-99", cell.Picking).ID()
			},
			wantErr: commands.ErrCrossWarehouse,
		},
		{
			name:    "unknown cell",
			target:  func(_ *testing.T, _ pickingFixture) kernel.UUID { return kernel.NewUUID() },
			wantErr: errs.ErrObjectNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPickingFixture(t)
			u := f.store.addUnit(t, f.warehouseID, "100", f.storage)

			_, err := f.createHandler(&recordingPublisher{}).Handle(t.Context(), f.createCommand(t, tc.target(t, f), u.ID()))

			require.ErrorIs(t, err, tc.wantErr)
			assert.Zero(t, f.store.taskCount())
		})
	}
}

func TestCreatePickingTaskCommandHandler_Handle_UnitInsertFailureLeavesNoTask(t *testing.T) {
	f := newPickingFixture(t)
	u := f.store.addUnit(t, f.warehouseID, "100", f.storage)
	f.store.addUnitsErr = errors.New("task_units insert failed")

	_, err := f.createHandler(&recordingPublisher{}).Handle(t.Context(), f.createCommand(t, f.picking.ID(), u.ID()))

	require.ErrorIs(t, err, f.store.addUnitsErr)
	assert.Equal(t, 1, f.store.deletes)
	assert.Zero(t, f.store.taskCount())
	assert.Zero(t, f.store.commits)
}

func TestCreatePickingTaskCommandHandler_Handle_PublishFailureIsNotFatal(t *testing.T) {
	f := newPickingFixture(t)
	u := f.store.addUnit(t, f.warehouseID, "100", f.storage)

	created, err := f.createHandler(&recordingPublisher{err: errors.New("broker down")}).
		Handle(t.Context(), f.createCommand(t, f.picking.ID(), u.ID()))

	require.NoError(t, err)
	assert.Equal(t, 1, f.store.taskCount())
	assert.Equal(t, task.Open, f.store.task(t, created.ID()).Status())
}
