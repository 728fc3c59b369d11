package ports

import (
	"context"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"
)

// CellRepository defines the persistence contract for cells.
// Cells are never deleted; only their active and blocked flags change.
type CellRepository interface {
	// Add persists a new cell. Codes are unique within a warehouse.
	Add(ctx context.Context, aggregate *cell.Cell) error

	// Update persists the active and blocked flags of an existing cell.
	Update(ctx context.Context, aggregate *cell.Cell) error

	// Get retrieves a cell by its identifier.
	// Returns errs.ErrObjectNotFound when the cell does not exist.
	Get(ctx context.Context, id kernel.UUID) (*cell.Cell, error)

	// GetByCode retrieves a cell by its code within a warehouse.
	GetByCode(ctx context.Context, warehouseID kernel.UUID, code string) (*cell.Cell, error)

	// GetMany retrieves the cells with the given identifiers. Missing
	// identifiers are skipped; callers compare lengths when they care.
	// Implementations split large lists into chunks.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*cell.Cell, error)
}

// UnitRepository defines the persistence contract for units.
type UnitRepository interface {
	// Add persists a new unit. Barcodes are unique within a warehouse.
	Add(ctx context.Context, aggregate *unit.Unit) error

	// Update persists the location, status and meta of an existing unit.
	Update(ctx context.Context, aggregate *unit.Unit) error

	// Get retrieves a unit by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*unit.Unit, error)

	// GetForUpdate retrieves a unit and locks its row until the surrounding
	// transaction ends. Concurrent moves of the same unit are serialized by it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.Unit, error)

	// GetByBarcode retrieves a unit by its normalized barcode within a warehouse.
	GetByBarcode(ctx context.Context, warehouseID kernel.UUID, barcode kernel.Barcode) (*unit.Unit, error)

	// GetMany retrieves the units with the given identifiers, skipping missing ones.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*unit.Unit, error)

	// ListInCellTypes retrieves every unit of a warehouse that sits in a cell
	// of one of the given types.
	//
	// Example:
	//   candidates, err := repo.ListInCellTypes(ctx, warehouseID, []cell.Type{cell.Storage, cell.Shipping})
	ListInCellTypes(ctx context.Context, warehouseID kernel.UUID, types []cell.Type) ([]*unit.Unit, error)
}

// LockChecker reports whether a warehouse-wide inventory lock is active.
// Moves are refused while the lock is on.
type LockChecker interface {
	IsLocked(ctx context.Context, warehouseID kernel.UUID) (bool, error)
}
