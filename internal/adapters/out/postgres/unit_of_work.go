// Package postgres implements the unit of work over GORM.
//
// Every repository handed out after Begin shares the transaction, so a
// handler's reads, row locks and writes commit or roll back together:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	u, err := uow.UnitRepository().GetForUpdate(ctx, unitID)
//	...
//	return uow.Commit(ctx)
//
// Rollback after Commit returns gorm.ErrInvalidTransaction and is otherwise
// harmless, which is what the deferred call relies on.
package postgres

import (
	"context"

	"warehouse/internal/adapters/out/postgres/cellrepo"
	"warehouse/internal/adapters/out/postgres/historyrepo"
	"warehouse/internal/adapters/out/postgres/lockrepo"
	"warehouse/internal/adapters/out/postgres/moverepo"
	"warehouse/internal/adapters/out/postgres/taskrepo"
	"warehouse/internal/adapters/out/postgres/unitrepo"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates a fresh unit of work per operation.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and remembers the
// aggregates written through its repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it twice keeps the first one.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) CellRepository() ports.CellRepository {
	return cellrepo.NewGormCellRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) UnitRepository() ports.UnitRepository {
	return unitrepo.NewGormUnitRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TaskRepository() ports.TaskRepository {
	return taskrepo.NewGormTaskRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) MoveRepository() ports.MoveRepository {
	return moverepo.NewGormMoveRepository(uow.conn())
}

func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn())
}

// LockChecker reads the lock through the transaction so the read and the
// move share one snapshot.
func (uow *GormUnitOfWork) LockChecker() ports.LockChecker {
	return lockrepo.NewGormLockRepository(uow.conn())
}

// TrackAggregate is called by repositories after a successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedIDs returns the identifiers of the aggregates written so far.
func (uow *GormUnitOfWork) TrackedIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		ids = append(ids, t.ID)
	}
	return ids
}

// conn returns the transaction when one is open and the pool otherwise.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
