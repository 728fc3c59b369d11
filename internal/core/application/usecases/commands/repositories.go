// Package commands contains the operations that change warehouse state:
// moving units, changing cell flags and running the picking task lifecycle.
// Handlers validate the command, open a unit of work, call repositories and
// commit. Multi-entity operations report per-item outcomes instead of failing
// as a whole.
package commands

import (
	"context"

	"warehouse/internal/core/ports"
)

// Unit of Work interfaces give each handler only the repositories it needs.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	CellRepoFactory interface {
		CellRepository() ports.CellRepository
	}

	UnitRepoFactory interface {
		UnitRepository() ports.UnitRepository
	}

	TaskRepoFactory interface {
		TaskRepository() ports.TaskRepository
	}

	MoveRepoFactory interface {
		MoveRepository() ports.MoveRepository
	}

	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	LockCheckerFactory interface {
		LockChecker() ports.LockChecker
	}

	// CellUoW manages transactions for cell administration.
	CellUoW interface {
		TxManager
		CellRepoFactory
	}

	// CellUoWFactory creates new cell unit of work instances.
	CellUoWFactory interface {
		Create() CellUoW
	}

	// MoveUoW manages the transaction of a single unit relocation.
	MoveUoW interface {
		TxManager
		CellRepoFactory
		UnitRepoFactory
		MoveRepoFactory
		LockCheckerFactory
	}

	// MoveUoWFactory creates new move unit of work instances.
	MoveUoWFactory interface {
		Create() MoveUoW
	}

	// TaskUoW manages picking task writes. Unit relocations made on behalf of
	// a task go through the move executor in their own transactions.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil {
	//       return err
	//   }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   t, err := uow.TaskRepository().Get(ctx, taskID)
	//   // ... change the task
	//   err = uow.Commit(ctx)
	TaskUoW interface {
		TxManager
		CellRepoFactory
		UnitRepoFactory
		TaskRepoFactory
		HistoryRepoFactory
	}

	// TaskUoWFactory creates new task unit of work instances.
	TaskUoWFactory interface {
		Create() TaskUoW
	}
)
