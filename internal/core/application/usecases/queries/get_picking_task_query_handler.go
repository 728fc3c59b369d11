package queries

import (
	"context"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPickingTaskQueryHandler reads a task with raw SQL. A task of another
// warehouse is reported as not found.
type GetPickingTaskQueryHandler struct {
	db *gorm.DB
}

func NewGetPickingTaskQueryHandler(db *gorm.DB) GetPickingTaskQueryHandler {
	return GetPickingTaskQueryHandler{db: db}
}

func (h GetPickingTaskQueryHandler) Handle(
	ctx context.Context,
	query GetPickingTaskQuery,
) (GetPickingTaskQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPickingTaskQueryResponse{}, err
	}

	response, found, err := h.readTask(ctx, query)
	if err != nil {
		return GetPickingTaskQueryResponse{}, err
	}
	if !found {
		return GetPickingTaskQueryResponse{}, errs.NewObjectNotFoundError("task", query.TaskID().String())
	}

	response.Units, err = h.readUnits(ctx, query.TaskID())
	if err != nil {
		return GetPickingTaskQueryResponse{}, err
	}

	return response, nil
}

func (h GetPickingTaskQueryHandler) readTask(
	ctx context.Context,
	query GetPickingTaskQuery,
) (GetPickingTaskQueryResponse, bool, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			t.id,
			t.warehouse_id,
			t.target_cell_id,
			COALESCE(c.code, ''),
			t.scenario,
			t.status,
			t.created_by,
			t.created_at,
			t.picked_by,
			t.picked_at,
			t.completed_by,
			t.completed_at,
			t.canceled_by,
			t.canceled_at,
			t.close_note
		FROM picking_tasks t
		LEFT JOIN cells c ON c.id = t.target_cell_id
		WHERE t.id = ? AND t.warehouse_id = ?
	`, query.TaskID().Raw(), query.WarehouseID().Raw()).Rows()
	if err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return GetPickingTaskQueryResponse{}, false, rows.Err()
	}

	var response GetPickingTaskQueryResponse
	var id, warehouseID, targetCellID uuid.UUID
	var status string
	err = rows.Scan(
		&id,
		&warehouseID,
		&targetCellID,
		&response.TargetCellCode,
		&response.Scenario,
		&status,
		&response.CreatedBy,
		&response.CreatedAt,
		&response.PickedBy,
		&response.PickedAt,
		&response.CompletedBy,
		&response.CompletedAt,
		&response.CanceledBy,
		&response.CanceledAt,
		&response.CloseNote,
	)
	if err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}

	if response.ID, err = kernel.UUIDFromRaw(id); err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}
	if response.WarehouseID, err = kernel.UUIDFromRaw(warehouseID); err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}
	if response.TargetCellID, err = kernel.UUIDFromRaw(targetCellID); err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}
	if response.Status, err = task.ParseStatus(status); err != nil {
		return GetPickingTaskQueryResponse{}, false, err
	}

	return response, true, rows.Err()
}

// readUnits lists the task units and, for legacy tasks, the single referenced
// unit, ordered by barcode.
func (h GetPickingTaskQueryHandler) readUnits(ctx context.Context, taskID kernel.UUID) ([]PickingTaskUnitView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			u.id,
			u.barcode,
			u.status,
			u.cell_id,
			COALESCE(cc.code, ''),
			tu.from_cell_id,
			COALESCE(fc.code, '')
		FROM picking_task_units tu
		JOIN units u ON u.id = tu.unit_id
		LEFT JOIN cells cc ON cc.id = u.cell_id
		LEFT JOIN cells fc ON fc.id = tu.from_cell_id
		WHERE tu.task_id = @task
		UNION ALL
		SELECT
			u.id,
			u.barcode,
			u.status,
			u.cell_id,
			COALESCE(cc.code, ''),
			NULL::uuid,
			''
		FROM picking_tasks t
		JOIN units u ON u.id = t.legacy_unit_id
		LEFT JOIN cells cc ON cc.id = u.cell_id
		WHERE t.id = @task
			AND NOT EXISTS (
				SELECT 1 FROM picking_task_units x
				WHERE x.task_id = t.id AND x.unit_id = t.legacy_unit_id
			)
		ORDER BY 2
	`, map[string]any{"task": taskID.Raw()}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]PickingTaskUnitView, 0)
	for rows.Next() {
		var view PickingTaskUnitView
		var id uuid.UUID
		var currentCellID, fromCellID *uuid.UUID
		var status string

		err = rows.Scan(
			&id,
			&view.Barcode,
			&status,
			&currentCellID,
			&view.CurrentCellCode,
			&fromCellID,
			&view.FromCellCode,
		)
		if err != nil {
			return nil, err
		}

		if view.UnitID, err = kernel.UUIDFromRaw(id); err != nil {
			return nil, err
		}
		if view.CurrentCellID, err = kernel.UUIDPtrFromRaw(currentCellID); err != nil {
			return nil, err
		}
		if view.FromCellID, err = kernel.UUIDPtrFromRaw(fromCellID); err != nil {
			return nil, err
		}
		if view.Status, err = unit.ParseStatus(status); err != nil {
			return nil, err
		}
		units = append(units, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return units, nil
}
