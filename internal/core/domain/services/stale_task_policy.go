package services

import (
	"time"

	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
)

// CellTypeLookup returns the type of the cell a unit currently sits in.
// ok is false for units without a cell or unknown to the caller.
type CellTypeLookup func(unitID kernel.UUID) (t cell.Type, ok bool)

// StaleTaskPolicy decides which tasks the administrative sweep may force-close.
// A task is eligible when it is still active, was created before the cutoff
// and, unless picking is included, none of its units already reached a
// picking cell.
type StaleTaskPolicy struct {
	includePicking bool
}

func NewStaleTaskPolicy(includePicking bool) StaleTaskPolicy {
	return StaleTaskPolicy{includePicking: includePicking}
}

func (p StaleTaskPolicy) IsEligible(t *task.Task, cutoff time.Time, cellTypeOf CellTypeLookup) bool {
	if t.Validate() != nil || !t.Status().IsActive() || !t.IsOlderThan(cutoff) {
		return false
	}
	if p.includePicking {
		return true
	}
	for _, id := range t.MemberUnitIDs() {
		if ct, ok := cellTypeOf(id); ok && ct == cell.Picking {
			return false
		}
	}
	return true
}
