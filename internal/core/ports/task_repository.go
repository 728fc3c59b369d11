package ports

import (
	"context"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
)

// StaleTaskFilter narrows the administrative sweep.
type StaleTaskFilter struct {
	// CreatedBefore is the cutoff; only tasks created strictly earlier match.
	CreatedBefore time.Time
	// WarehouseID limits the sweep to one warehouse when set.
	WarehouseID *kernel.UUID
	// Scenario limits the sweep to one scenario when set.
	Scenario *string
}

// TaskRepository defines the persistence contract for picking tasks.
// Task rows and task unit rows are written by separate calls so that the
// creation saga can compensate a failed unit insert.
type TaskRepository interface {
	// Add persists the task row without its units.
	Add(ctx context.Context, aggregate *task.Task) error

	// AddUnits persists the units of a task with their from-cell snapshots.
	AddUnits(ctx context.Context, taskID kernel.UUID, units []task.Unit) error

	// Delete removes a task row and any unit rows attached to it.
	Delete(ctx context.Context, id kernel.UUID) error

	// Update persists the status and actor/timestamp fields of a task.
	Update(ctx context.Context, aggregate *task.Task) error

	// Get retrieves a task together with its units.
	Get(ctx context.Context, id kernel.UUID) (*task.Task, error)

	// ListActiveUnitIDs returns the units attached to open or in-progress
	// tasks of a warehouse, through task units or the legacy reference.
	ListActiveUnitIDs(ctx context.Context, warehouseID kernel.UUID) ([]kernel.UUID, error)

	// ListStale returns one page of open or in-progress tasks matching filter,
	// ordered by id and starting after afterID when it is set.
	ListStale(ctx context.Context, filter StaleTaskFilter, afterID *kernel.UUID, limit int) ([]*task.Task, error)

	// ForceCloseMany marks the given tasks done with a close note. Tasks that
	// are no longer active are left untouched. Returns the ids actually closed.
	ForceCloseMany(ctx context.Context, ids []kernel.UUID, actor, note string, at time.Time) ([]kernel.UUID, error)
}
