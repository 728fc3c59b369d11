package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/history"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var errNoTransaction = errors.New("no active transaction")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memState struct {
	cells  map[kernel.UUID]*cell.Cell
	units  map[kernel.UUID]*unit.Unit
	tasks  map[kernel.UUID]task.Snapshot
	moves  []*movement.Record
	events []*history.Event
}

func cloneCell(c *cell.Cell) *cell.Cell {
	copied, err := cell.RestoreCell(c.ID(), c.WarehouseID(), c.Code(), c.Type(), c.IsActive(), c.IsBlocked())
	if err != nil {
		panic(err)
	}
	return copied
}

func cloneUnit(u *unit.Unit) *unit.Unit {
	copied, err := unit.RestoreUnit(u.ID(), u.WarehouseID(), u.Barcode(), u.CellID(), u.Status(), u.Meta())
	if err != nil {
		panic(err)
	}
	return copied
}

func (s memState) clone() memState {
	c := memState{
		cells:  make(map[kernel.UUID]*cell.Cell, len(s.cells)),
		units:  make(map[kernel.UUID]*unit.Unit, len(s.units)),
		tasks:  make(map[kernel.UUID]task.Snapshot, len(s.tasks)),
		moves:  slices.Clone(s.moves),
		events: slices.Clone(s.events),
	}
	for id, v := range s.cells {
		c.cells[id] = cloneCell(v)
	}
	for id, v := range s.units {
		c.units[id] = cloneUnit(v)
	}
	for id, v := range s.tasks {
		v.Units = slices.Clone(v.Units)
		c.tasks[id] = v
	}
	return c
}

// memStore is a transactional in-memory implementation of every port.
// Each unit of work works on a copy of the state that Commit writes back.
type memStore struct {
	mu     sync.Mutex
	state  memState
	locked map[kernel.UUID]bool

	addUnitsErr error
	deleteErr   error
	deletes     int
	commits     int

	// forceCloseErrs fails ForceCloseMany calls in order; nil entries succeed.
	forceCloseErrs   []error
	forceCloseCalls  int
	beforeForceClose func(tasks map[kernel.UUID]task.Snapshot)
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			cells: make(map[kernel.UUID]*cell.Cell),
			units: make(map[kernel.UUID]*unit.Unit),
			tasks: make(map[kernel.UUID]task.Snapshot),
		},
		locked: make(map[kernel.UUID]bool),
	}
}

func (s *memStore) addCell(t *testing.T, warehouseID kernel.UUID, code string, cellType cell.Type) *cell.Cell {
	t.Helper()
	c, err := cell.NewCell(kernel.NewUUID(), warehouseID, code, cellType)
	require.NoError(t, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cells[c.ID()] = cloneCell(c)
	return c
}

func (s *memStore) addUnit(t *testing.T, warehouseID kernel.UUID, barcode string, in *cell.Cell) *unit.Unit {
	t.Helper()
	u, err := unit.NewUnit(kernel.NewUUID(), warehouseID, kernel.Barcode(barcode))
	require.NoError(t, err)
	if in != nil {
		status, err := services.NewTransitionPolicy().StatusForCellType(in.Type())
		require.NoError(t, err)
		require.NoError(t, u.MoveTo(in.ID(), status))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.units[u.ID()] = cloneUnit(u)
	return u
}

func (s *memStore) putTask(t *testing.T, snapshot task.Snapshot) *task.Task {
	t.Helper()
	tk, err := task.RestoreTask(snapshot)
	require.NoError(t, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tasks[tk.ID()] = tk.Snapshot()
	return tk
}

func (s *memStore) updateCell(c *cell.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.cells[c.ID()] = cloneCell(c)
}

func (s *memStore) setLocked(warehouseID kernel.UUID, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked[warehouseID] = locked
}

func (s *memStore) unit(t *testing.T, id kernel.UUID) *unit.Unit {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.units[id]
	require.True(t, ok, "unit %s", id)
	return cloneUnit(u)
}

func (s *memStore) findUnit(id kernel.UUID) (*unit.Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.units[id]
	if !ok {
		return nil, false
	}
	return cloneUnit(u), true
}

func (s *memStore) task(t *testing.T, id kernel.UUID) *task.Task {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.state.tasks[id]
	require.True(t, ok, "task %s", id)
	tk, err := task.RestoreTask(snapshot)
	require.NoError(t, err)
	return tk
}

func (s *memStore) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.tasks)
}

func (s *memStore) moves() []*movement.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.moves)
}

func (s *memStore) events() []*history.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.events)
}

func (s *memStore) moveFactory() commands.MoveUoWFactory { return memMoveFactory{s} }
func (s *memStore) taskFactory() commands.TaskUoWFactory { return memTaskFactory{s} }
func (s *memStore) cellFactory() commands.CellUoWFactory { return memCellFactory{s} }

func (s *memStore) mover() commands.MoveUnitCommandHandler {
	return commands.NewMoveUnitCommandHandler(s.moveFactory())
}

type memMoveFactory struct{ s *memStore }

func (f memMoveFactory) Create() commands.MoveUoW { return &memUoW{store: f.s} }

type memTaskFactory struct{ s *memStore }

func (f memTaskFactory) Create() commands.TaskUoW { return &memUoW{store: f.s} }

type memCellFactory struct{ s *memStore }

func (f memCellFactory) Create() commands.CellUoW { return &memUoW{store: f.s} }

type memUoW struct {
	store *memStore
	tx    *memState
}

func (u *memUoW) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	st := u.store.state.clone()
	u.tx = &st
	return nil
}

func (u *memUoW) Commit(_ context.Context) error {
	if u.tx == nil {
		return errNoTransaction
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.state = *u.tx
	u.store.commits++
	u.tx = nil
	return nil
}

func (u *memUoW) Rollback(_ context.Context) error {
	if u.tx == nil {
		return errNoTransaction
	}
	u.tx = nil
	return nil
}

func (u *memUoW) st() *memState {
	if u.tx == nil {
		panic("repository used outside of a transaction")
	}
	return u.tx
}

func (u *memUoW) CellRepository() ports.CellRepository       { return memCellRepo{u} }
func (u *memUoW) UnitRepository() ports.UnitRepository       { return memUnitRepo{u} }
func (u *memUoW) TaskRepository() ports.TaskRepository       { return memTaskRepo{u} }
func (u *memUoW) MoveRepository() ports.MoveRepository       { return memMoveRepo{u} }
func (u *memUoW) HistoryRepository() ports.HistoryRepository { return memHistoryRepo{u} }
func (u *memUoW) LockChecker() ports.LockChecker             { return memLockChecker{u.store} }

type memCellRepo struct{ u *memUoW }

func (r memCellRepo) Add(_ context.Context, c *cell.Cell) error {
	r.u.st().cells[c.ID()] = cloneCell(c)
	return nil
}

func (r memCellRepo) Update(_ context.Context, c *cell.Cell) error {
	if _, ok := r.u.st().cells[c.ID()]; !ok {
		return errs.NewObjectNotFoundError("cell", c.ID().String())
	}
	r.u.st().cells[c.ID()] = cloneCell(c)
	return nil
}

func (r memCellRepo) Get(_ context.Context, id kernel.UUID) (*cell.Cell, error) {
	c, ok := r.u.st().cells[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("cell", id.String())
	}
	return cloneCell(c), nil
}

func (r memCellRepo) GetByCode(_ context.Context, warehouseID kernel.UUID, code string) (*cell.Cell, error) {
	for _, c := range r.u.st().cells {
		if c.BelongsTo(warehouseID) && c.Code() == code {
			return cloneCell(c), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("cell", code)
}

func (r memCellRepo) GetMany(_ context.Context, ids []kernel.UUID) ([]*cell.Cell, error) {
	var out []*cell.Cell
	for _, id := range ids {
		if c, ok := r.u.st().cells[id]; ok {
			out = append(out, cloneCell(c))
		}
	}
	return out, nil
}

type memUnitRepo struct{ u *memUoW }

func (r memUnitRepo) Add(_ context.Context, u *unit.Unit) error {
	r.u.st().units[u.ID()] = cloneUnit(u)
	return nil
}

func (r memUnitRepo) Update(_ context.Context, u *unit.Unit) error {
	if _, ok := r.u.st().units[u.ID()]; !ok {
		return errs.NewObjectNotFoundError("unit", u.ID().String())
	}
	r.u.st().units[u.ID()] = cloneUnit(u)
	return nil
}

func (r memUnitRepo) Get(_ context.Context, id kernel.UUID) (*unit.Unit, error) {
	u, ok := r.u.st().units[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("unit", id.String())
	}
	return cloneUnit(u), nil
}

func (r memUnitRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.Unit, error) {
	return r.Get(ctx, id)
}

func (r memUnitRepo) GetByBarcode(_ context.Context, warehouseID kernel.UUID, barcode kernel.Barcode) (*unit.Unit, error) {
	for _, u := range r.u.st().units {
		if u.BelongsTo(warehouseID) && u.Barcode() == barcode {
			return cloneUnit(u), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("unit", barcode.String())
}

func (r memUnitRepo) GetMany(_ context.Context, ids []kernel.UUID) ([]*unit.Unit, error) {
	var out []*unit.Unit
	for _, id := range ids {
		if u, ok := r.u.st().units[id]; ok {
			out = append(out, cloneUnit(u))
		}
	}
	return out, nil
}

func (r memUnitRepo) ListInCellTypes(_ context.Context, warehouseID kernel.UUID, types []cell.Type) ([]*unit.Unit, error) {
	var out []*unit.Unit
	for _, u := range r.u.st().units {
		id := u.CellID()
		if !u.BelongsTo(warehouseID) || id == nil {
			continue
		}
		if c, ok := r.u.st().cells[*id]; ok && slices.Contains(types, c.Type()) {
			out = append(out, cloneUnit(u))
		}
	}
	return out, nil
}

type memTaskRepo struct{ u *memUoW }

func (r memTaskRepo) Add(_ context.Context, t *task.Task) error {
	s := t.Snapshot()
	s.Units = nil
	r.u.st().tasks[t.ID()] = s
	return nil
}

func (r memTaskRepo) AddUnits(_ context.Context, taskID kernel.UUID, units []task.Unit) error {
	if r.u.store.addUnitsErr != nil {
		return r.u.store.addUnitsErr
	}
	s, ok := r.u.st().tasks[taskID]
	if !ok {
		return errs.NewObjectNotFoundError("task", taskID.String())
	}
	s.Units = append(slices.Clone(s.Units), units...)
	r.u.st().tasks[taskID] = s
	return nil
}

func (r memTaskRepo) Delete(_ context.Context, id kernel.UUID) error {
	r.u.store.deletes++
	if r.u.store.deleteErr != nil {
		return r.u.store.deleteErr
	}
	delete(r.u.st().tasks, id)
	return nil
}

func (r memTaskRepo) Update(_ context.Context, t *task.Task) error {
	prev, ok := r.u.st().tasks[t.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("task", t.ID().String())
	}
	s := t.Snapshot()
	s.Units = prev.Units
	r.u.st().tasks[t.ID()] = s
	return nil
}

func (r memTaskRepo) Get(_ context.Context, id kernel.UUID) (*task.Task, error) {
	s, ok := r.u.st().tasks[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("task", id.String())
	}
	return task.RestoreTask(s)
}

func (r memTaskRepo) ListActiveUnitIDs(_ context.Context, warehouseID kernel.UUID) ([]kernel.UUID, error) {
	var out []kernel.UUID
	for _, s := range r.u.st().tasks {
		if !s.WarehouseID.IsEqual(warehouseID) || !s.Status.IsActive() {
			continue
		}
		if s.LegacyUnitID != nil {
			out = append(out, *s.LegacyUnitID)
		}
		for _, m := range s.Units {
			out = append(out, m.UnitID())
		}
	}
	return out, nil
}

func (r memTaskRepo) ListStale(
	_ context.Context,
	filter ports.StaleTaskFilter,
	afterID *kernel.UUID,
	limit int,
) ([]*task.Task, error) {
	var matched []task.Snapshot
	for _, s := range r.u.st().tasks {
		switch {
		case !s.Status.IsActive(), !s.CreatedAt.Before(filter.CreatedBefore):
			continue
		case filter.WarehouseID != nil && !s.WarehouseID.IsEqual(*filter.WarehouseID):
			continue
		case filter.Scenario != nil && (s.Scenario == nil || *s.Scenario != *filter.Scenario):
			continue
		case afterID != nil && s.ID.String() <= afterID.String():
			continue
		}
		matched = append(matched, s)
	}
	slices.SortFunc(matched, func(a, b task.Snapshot) int {
		switch {
		case a.ID.String() < b.ID.String():
			return -1
		case a.ID.String() > b.ID.String():
			return 1
		default:
			return 0
		}
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*task.Task, 0, len(matched))
	for _, s := range matched {
		t, err := task.RestoreTask(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r memTaskRepo) ForceCloseMany(
	_ context.Context,
	ids []kernel.UUID,
	actor, note string,
	at time.Time,
) ([]kernel.UUID, error) {
	store := r.u.store
	call := store.forceCloseCalls
	store.forceCloseCalls++
	if call < len(store.forceCloseErrs) && store.forceCloseErrs[call] != nil {
		return nil, store.forceCloseErrs[call]
	}
	if store.beforeForceClose != nil {
		store.beforeForceClose(r.u.st().tasks)
	}

	var closed []kernel.UUID
	for _, id := range ids {
		s, ok := r.u.st().tasks[id]
		if !ok || !s.Status.IsActive() {
			continue
		}
		s.Status = task.Done
		s.CompletedBy = &actor
		s.CompletedAt = &at
		s.CloseNote = &note
		r.u.st().tasks[id] = s
		closed = append(closed, id)
	}
	return closed, nil
}

type memMoveRepo struct{ u *memUoW }

func (r memMoveRepo) Add(_ context.Context, record *movement.Record) error {
	r.u.st().moves = append(r.u.st().moves, record)
	return nil
}

type memHistoryRepo struct{ u *memUoW }

func (r memHistoryRepo) Add(_ context.Context, event *history.Event) error {
	r.u.st().events = append(r.u.st().events, event)
	return nil
}

type memLockChecker struct{ s *memStore }

func (l memLockChecker) IsLocked(_ context.Context, warehouseID kernel.UUID) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.locked[warehouseID], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*history.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...*history.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) kinds() []history.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]history.Kind, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

func mustActor(t *testing.T, id string, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(id, role)
	require.NoError(t, err)
	return a
}
