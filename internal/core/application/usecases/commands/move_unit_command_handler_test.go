package commands_test

import (
	"context"
	"errors"
	"testing"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLockChecker struct{ mock.Mock }

func (m *MockLockChecker) IsLocked(ctx context.Context, warehouseID kernel.UUID) (bool, error) {
	args := m.Called(ctx, warehouseID)
	return args.Bool(0), args.Error(1)
}

type MockMoveUnitRepository struct {
	mock.Mock
	ports.UnitRepository
}

func (m *MockMoveUnitRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unit.Unit), args.Error(1)
}

type MockMoveUoW struct{ mock.Mock }

func (m *MockMoveUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMoveUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMoveUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMoveUoW) CellRepository() ports.CellRepository {
	args := m.Called()
	return args.Get(0).(ports.CellRepository)
}

func (m *MockMoveUoW) UnitRepository() ports.UnitRepository {
	args := m.Called()
	return args.Get(0).(ports.UnitRepository)
}

func (m *MockMoveUoW) MoveRepository() ports.MoveRepository {
	args := m.Called()
	return args.Get(0).(ports.MoveRepository)
}

func (m *MockMoveUoW) LockChecker() ports.LockChecker {
	args := m.Called()
	return args.Get(0).(ports.LockChecker)
}

type MockMoveUoWFactory struct{ mock.Mock }

func (m *MockMoveUoWFactory) Create() commands.MoveUoW {
	args := m.Called()
	return args.Get(0).(commands.MoveUoW)
}

func newMoveCommand(t *testing.T, warehouseID, unitID, cellID kernel.UUID) commands.MoveUnitCommand {
	t.Helper()
	cmd, err := commands.NewMoveUnitCommand(warehouseID, unitID, cellID, movement.SourceManual, mustActor(t, "worker-1", kernel.RoleWorker))
	require.NoError(t, err)
	return cmd
}

func TestMoveUnitCommandHandler_Handle_LockIsCheckedFirst(t *testing.T) {
	ctx := t.Context()
	warehouseID := kernel.NewUUID()
	cmd := newMoveCommand(t, warehouseID, kernel.NewUUID(), kernel.NewUUID())

	lock := new(MockLockChecker)
	unitRepo := new(MockMoveUnitRepository)
	uow := new(MockMoveUoW)
	factory := new(MockMoveUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CellRepository").Return(new(memCellRepo)).Once(),
		uow.On("UnitRepository").Return(unitRepo).Once(),
		uow.On("LockChecker").Return(lock).Once(),
		lock.On("IsLocked", ctx, warehouseID).Return(true, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err := commands.NewMoveUnitCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrInventoryLocked)
	unitRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.AssertExpectations(t)
	lock.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestMoveUnitCommandHandler_Handle_LockReadError(t *testing.T) {
	ctx := t.Context()
	warehouseID := kernel.NewUUID()
	cmd := newMoveCommand(t, warehouseID, kernel.NewUUID(), kernel.NewUUID())
	readErr := errors.New("connection reset")

	lock := new(MockLockChecker)
	uow := new(MockMoveUoW)
	factory := new(MockMoveUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CellRepository").Return(new(memCellRepo)).Once()
	uow.On("UnitRepository").Return(new(MockMoveUnitRepository)).Once()
	uow.On("LockChecker").Return(lock).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	lock.On("IsLocked", ctx, warehouseID).Return(false, readErr).Once()

	_, err := commands.NewMoveUnitCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, readErr)
	uow.AssertExpectations(t)
}

func TestMoveUnitCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd := newMoveCommand(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID())

	uow := new(MockMoveUoW)
	factory := new(MockMoveUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	_, err := commands.NewMoveUnitCommandHandler(factory).Handle(ctx, cmd)

	require.EqualError(t, err, "begin error")
	uow.AssertNotCalled(t, "LockChecker")
}

func TestMoveUnitCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockMoveUoWFactory)

	_, err := commands.NewMoveUnitCommandHandler(factory).Handle(t.Context(), commands.MoveUnitCommand{})

	require.ErrorIs(t, err, commands.ErrMoveUnitCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestMoveUnitCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	store := newMemStore()
	warehouseID := kernel.NewUUID()
	storage := store.addCell(t, warehouseID, "S-01", cell.Storage)
	shipping := store.addCell(t, warehouseID, "SH-01", cell.Shipping)
	u := store.addUnit(t, warehouseID, "4600000001", storage)

	result, err := store.mover().Handle(ctx, newMoveCommand(t, warehouseID, u.ID(), shipping.ID()))

	require.NoError(t, err)
	assert.Equal(t, shipping.ID(), result.CellID)
	assert.Equal(t, unit.Shipping, result.Status)
	assert.Equal(t, storage.ID(), *result.PreviousCellID)

	stored := store.unit(t, u.ID())
	assert.True(t, stored.IsIn(shipping.ID()))
	assert.Equal(t, unit.Shipping, stored.Status())

	moves := store.moves()
	require.Len(t, moves, 1)
	assert.Equal(t, storage.ID(), *moves[0].FromCellID())
	assert.Equal(t, shipping.ID(), moves[0].ToCellID())
	assert.Equal(t, unit.Shipping, moves[0].ToStatus())
	assert.Equal(t, movement.SourceManual, moves[0].Source())
	assert.Equal(t, "worker-1", moves[0].Actor())
}

func TestMoveUnitCommandHandler_Handle_FirstPlacement(t *testing.T) {
	ctx := t.Context()
	store := newMemStore()
	warehouseID := kernel.NewUUID()
	bin := store.addCell(t, warehouseID, "BIN-1", cell.Bin)
	u := store.addUnit(t, warehouseID, "777", nil)

	result, err := store.mover().Handle(ctx, newMoveCommand(t, warehouseID, u.ID(), bin.ID()))

	require.NoError(t, err)
	assert.Nil(t, result.PreviousCellID)
	assert.Equal(t, unit.Bin, store.unit(t, u.ID()).Status())
	assert.Nil(t, store.moves()[0].FromCellID())
}

func TestMoveUnitCommandHandler_Handle_Rejections(t *testing.T) {
	warehouseID := kernel.NewUUID()
	otherWarehouseID := kernel.NewUUID()

	testCases := []struct {
		name    string
		setup   func(t *testing.T, store *memStore) (unitID, cellID kernel.UUID)
		wantErr []error
	}{
		{
			name: "missing unit",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				return kernel.NewUUID(), store.addCell(t, warehouseID, "S-01", cell.Storage).ID()
			},
			wantErr: []error{errs.ErrObjectNotFound},
		},
		{
			name: "missing cell",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				return store.addUnit(t, warehouseID, "1", nil).ID(), kernel.NewUUID()
			},
			wantErr: []error{errs.ErrObjectNotFound},
		},
		{
			name: "cell of another warehouse",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				return store.addUnit(t, warehouseID, "1", nil).ID(), store.addCell(t, otherWarehouseID, "S-01", cell.Storage).ID()
			},
			wantErr: []error{commands.ErrCrossWarehouse, errs.ErrObjectNotFound},
		},
		{
			name: "unit of another warehouse",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				return store.addUnit(t, otherWarehouseID, "1", nil).ID(), store.addCell(t, warehouseID, "S-01", cell.Storage).ID()
			},
			wantErr: []error{commands.ErrCrossWarehouse},
		},
		{
			name: "blocked cell",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				c := store.addCell(t, warehouseID, "S-01", cell.Storage)
				c.Block()
				store.updateCell(c)
				return store.addUnit(t, warehouseID, "1", nil).ID(), c.ID()
			},
			wantErr: []error{commands.ErrCellUnavailable, errs.ErrValueIsInvalid},
		},
		{
			name: "inactive cell",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				c := store.addCell(t, warehouseID, "S-01", cell.Storage)
				c.Deactivate()
				store.updateCell(c)
				return store.addUnit(t, warehouseID, "1", nil).ID(), c.ID()
			},
			wantErr: []error{commands.ErrCellUnavailable},
		},
		{
			name: "picking to storage",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				picking := store.addCell(t, warehouseID, "P-01", cell.Picking)
				storage := store.addCell(t, warehouseID, "S-01", cell.Storage)
				return store.addUnit(t, warehouseID, "1", picking).ID(), storage.ID()
			},
			wantErr: []error{services.ErrTransitionNotAllowed},
		},
		{
			name: "back into bin",
			setup: func(t *testing.T, store *memStore) (kernel.UUID, kernel.UUID) {
				storage := store.addCell(t, warehouseID, "S-01", cell.Storage)
				bin := store.addCell(t, warehouseID, "BIN-1", cell.Bin)
				return store.addUnit(t, warehouseID, "1", storage).ID(), bin.ID()
			},
			wantErr: []error{services.ErrTransitionNotAllowed},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			unitID, cellID := tc.setup(t, store)
			before, existed := store.findUnit(unitID)

			_, err := store.mover().Handle(t.Context(), newMoveCommand(t, warehouseID, unitID, cellID))

			for _, want := range tc.wantErr {
				require.ErrorIs(t, err, want)
			}
			assert.Empty(t, store.moves())
			if existed {
				assert.Equal(t, before.CellID(), store.unit(t, unitID).CellID())
				assert.Equal(t, before.Status(), store.unit(t, unitID).Status())
			}
		})
	}
}
