package services

import (
	"fmt"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"
)

// ErrTransitionNotAllowed is returned when a unit may not move between two cell types.
var ErrTransitionNotAllowed = fmt.Errorf("%w: transition not allowed", errs.ErrValueIsInvalid)

func getStatusByCellType() map[cell.Type]unit.Status {
	return map[cell.Type]unit.Status{
		cell.Bin:      unit.Bin,
		cell.Storage:  unit.Stored,
		cell.Shipping: unit.Shipping,
		cell.Picking:  unit.Picking,
		cell.Rejected: unit.Rejected,
		cell.FF:       unit.FF,
	}
}

// getAllowedTransitions lists, per source cell type, the cell types a unit may
// move into. Bin never appears as a destination: units enter the warehouse
// there and never return.
func getAllowedTransitions() map[cell.Type][]cell.Type {
	return map[cell.Type][]cell.Type{
		cell.Bin:      {cell.Storage, cell.Shipping, cell.Rejected, cell.FF},
		cell.Storage:  {cell.Storage, cell.Shipping, cell.Picking, cell.Rejected, cell.FF},
		cell.Shipping: {cell.Shipping, cell.Storage, cell.Picking, cell.Rejected, cell.FF},
		cell.Picking:  {cell.Picking},
		cell.Rejected: {cell.Rejected, cell.FF, cell.Storage, cell.Shipping},
		cell.FF:       {cell.FF, cell.Storage, cell.Shipping},
	}
}

// TransitionPolicy decides where a unit may go next and which status it gets there.
//
// Business rules:
//   - A unit's status is always the image of its cell type
//   - A unit with no cell may be placed anywhere
//   - Bin is entry-only; units never move back into a bin
//   - Picking is a dead end until the unit ships out
//
// Example usage:
//
//	policy := services.NewTransitionPolicy()
//	if err := policy.CheckTransition(from, target.Type()); err != nil {
//	    return err
//	}
//	status, err := policy.StatusForCellType(target.Type())
type TransitionPolicy struct{}

func NewTransitionPolicy() TransitionPolicy {
	return TransitionPolicy{}
}

// StatusForCellType returns the unit status implied by a cell type.
//
// Returns:
//   - unit.Status: the derived status
//   - error: cell.ErrUnknownCellType for types outside the known set
func (TransitionPolicy) StatusForCellType(t cell.Type) (unit.Status, error) {
	status, ok := getStatusByCellType()[t]
	if !ok {
		return unit.Unset, errs.NewValueIsInvalidErrorWithCause("cell type", fmt.Errorf("%w: %d", cell.ErrUnknownCellType, t))
	}
	return status, nil
}

// IsTransitionAllowed reports whether a unit sitting in a cell of type from
// may move into a cell of type to. A nil from means the unit has no cell.
func (TransitionPolicy) IsTransitionAllowed(from *cell.Type, to cell.Type) bool {
	if to.Validate() != nil {
		return false
	}
	if from == nil {
		return true
	}
	for _, allowed := range getAllowedTransitions()[*from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition is IsTransitionAllowed with a descriptive error.
func (p TransitionPolicy) CheckTransition(from *cell.Type, to cell.Type) error {
	if p.IsTransitionAllowed(from, to) {
		return nil
	}
	source := "none"
	if from != nil {
		source = from.String()
	}
	return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, source, to)
}
