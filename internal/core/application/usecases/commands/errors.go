package commands

import (
	"errors"
	"fmt"

	"warehouse/internal/pkg/errs"
)

var (
	// ErrInventoryLocked is returned while an inventory count holds the warehouse lock.
	ErrInventoryLocked = errors.New("inventory is locked")
	// ErrCrossWarehouse is returned when entities of another warehouse are referenced.
	// It is reported as not found so foreign identifiers are not disclosed.
	ErrCrossWarehouse = fmt.Errorf("%w: belongs to another warehouse", errs.ErrObjectNotFound)
	// ErrCellUnavailable is returned for inactive or blocked target cells.
	ErrCellUnavailable = fmt.Errorf("%w: cell is unavailable", errs.ErrValueIsInvalid)
	// ErrWrongCellType is returned when a cell of another type is required.
	ErrWrongCellType = fmt.Errorf("%w: wrong cell type", errs.ErrValueIsInvalid)
	// ErrUnitsNotPickable is returned when units cannot be attached to a task.
	ErrUnitsNotPickable = fmt.Errorf("%w: units cannot be picked", errs.ErrValueIsInvalid)
	// ErrUnitNotInTask is returned when a scanned unit is not part of the task.
	ErrUnitNotInTask = fmt.Errorf("%w: unit is not part of the task", errs.ErrConflict)
	// ErrCancelIncomplete is returned when cancellation requires every unit back in place.
	ErrCancelIncomplete = fmt.Errorf("%w: not every unit was returned", errs.ErrConflict)
)
