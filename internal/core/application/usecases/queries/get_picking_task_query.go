// Package queries holds the read side: SQL read models that bypass the
// aggregates and return flat responses for the HTTP adapter.
package queries

import (
	"errors"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/guard"
)

var ErrGetPickingTaskQueryIsNotConstructed = errors.New(
	"GetPickingTaskQuery must be created via NewGetPickingTaskQuery constructor",
)

// GetPickingTaskQuery reads one task of a warehouse together with its units
// and the cells they sit in now.
//
// Example:
//
//	query, err := NewGetPickingTaskQuery(warehouseID, taskID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetPickingTaskQuery struct {
	warehouseID kernel.UUID
	taskID      kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetPickingTaskQuery(warehouseID, taskID kernel.UUID) (GetPickingTaskQuery, error) {
	if err := errors.Join(warehouseID.Validate(), taskID.Validate()); err != nil {
		return GetPickingTaskQuery{}, err
	}

	return GetPickingTaskQuery{
		warehouseID: warehouseID,
		taskID:      taskID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q GetPickingTaskQuery) Validate() error {
	return q.guard.Validate(ErrGetPickingTaskQueryIsNotConstructed)
}

func (q GetPickingTaskQuery) WarehouseID() kernel.UUID {
	return q.warehouseID
}

func (q GetPickingTaskQuery) TaskID() kernel.UUID {
	return q.taskID
}

// GetPickingTaskQueryResponse is the task read model. Actor and time fields
// are nil until the matching transition happened.
type GetPickingTaskQueryResponse struct {
	ID             kernel.UUID
	WarehouseID    kernel.UUID
	TargetCellID   kernel.UUID
	TargetCellCode string
	Scenario       *string
	Status         task.Status
	CreatedBy      string
	CreatedAt      time.Time
	PickedBy       *string
	PickedAt       *time.Time
	CompletedBy    *string
	CompletedAt    *time.Time
	CanceledBy     *string
	CanceledAt     *time.Time
	CloseNote      *string
	Units          []PickingTaskUnitView
}

// PickingTaskUnitView is one member of a task. FromCellID is nil for the
// single-unit reference of legacy tasks.
type PickingTaskUnitView struct {
	UnitID          kernel.UUID
	Barcode         string
	Status          unit.Status
	CurrentCellID   *kernel.UUID
	CurrentCellCode string
	FromCellID      *kernel.UUID
	FromCellCode    string
}
