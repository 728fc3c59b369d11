package queries

import (
	"context"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUnitMovesQueryHandler reads unit_moves joined with the cell codes.
// A unit of another warehouse is reported as not found.
type GetUnitMovesQueryHandler struct {
	db *gorm.DB
}

func NewGetUnitMovesQueryHandler(db *gorm.DB) GetUnitMovesQueryHandler {
	return GetUnitMovesQueryHandler{db: db}
}

func (h GetUnitMovesQueryHandler) Handle(
	ctx context.Context,
	query GetUnitMovesQuery,
) ([]GetUnitMovesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var exists bool
	err := h.db.WithContext(ctx).Raw(
		"SELECT EXISTS (SELECT 1 FROM units WHERE id = ? AND warehouse_id = ?)",
		query.UnitID().Raw(), query.WarehouseID().Raw(),
	).Scan(&exists).Error
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NewObjectNotFoundError("unit", query.UnitID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			m.from_cell_id,
			COALESCE(fc.code, ''),
			m.to_cell_id,
			COALESCE(tc.code, ''),
			m.to_status,
			m.source,
			m.actor,
			m.moved_at
		FROM unit_moves m
		LEFT JOIN cells fc ON fc.id = m.from_cell_id
		LEFT JOIN cells tc ON tc.id = m.to_cell_id
		WHERE m.unit_id = ?
		ORDER BY m.moved_at DESC, m.id
		LIMIT ?
	`, query.UnitID().Raw(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	moves := make([]GetUnitMovesQueryResponse, 0)
	for rows.Next() {
		var move GetUnitMovesQueryResponse
		var fromCellID *uuid.UUID
		var toCellID uuid.UUID
		var status, source string

		err = rows.Scan(
			&fromCellID,
			&move.FromCellCode,
			&toCellID,
			&move.ToCellCode,
			&status,
			&source,
			&move.Actor,
			&move.MovedAt,
		)
		if err != nil {
			return nil, err
		}

		if move.FromCellID, err = kernel.UUIDPtrFromRaw(fromCellID); err != nil {
			return nil, err
		}
		if move.ToCellID, err = kernel.UUIDFromRaw(toCellID); err != nil {
			return nil, err
		}
		if move.ToStatus, err = unit.ParseStatus(status); err != nil {
			return nil, err
		}
		if move.Source, err = movement.ParseSource(source); err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return moves, nil
}
