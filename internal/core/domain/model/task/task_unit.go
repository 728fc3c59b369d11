package task

import (
	"warehouse/internal/core/domain/model/kernel"
)

// Unit attaches a unit to a task together with the cell it was taken from.
type Unit struct {
	unitID     kernel.UUID
	fromCellID *kernel.UUID
}

// NewUnit snapshots the unit's current cell. fromCellID may be nil only for
// rows restored from legacy data.
func NewUnit(unitID kernel.UUID, fromCellID *kernel.UUID) (Unit, error) {
	if err := unitID.Validate(); err != nil {
		return Unit{}, err
	}
	u := Unit{unitID: unitID}
	if fromCellID != nil {
		id := *fromCellID
		u.fromCellID = &id
	}
	return u, nil
}

func (u Unit) UnitID() kernel.UUID {
	return u.unitID
}

// FromCellID is the rollback destination of the unit on cancellation.
func (u Unit) FromCellID() *kernel.UUID {
	if u.fromCellID == nil {
		return nil
	}
	id := *u.fromCellID
	return &id
}
