package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories returned after
// Begin share its transaction.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns an error if no transaction is active, so deferred calls after
	// Commit are harmless.
	Rollback(ctx context.Context) error

	CellRepository() CellRepository
	UnitRepository() UnitRepository
	TaskRepository() TaskRepository
	MoveRepository() MoveRepository
	HistoryRepository() HistoryRepository

	// LockChecker reads the inventory lock inside the current transaction.
	LockChecker() LockChecker
}
