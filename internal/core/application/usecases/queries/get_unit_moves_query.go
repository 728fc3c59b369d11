package queries

import (
	"errors"
	"time"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/movement"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

const (
	DefaultUnitMovesLimit = 100
	MaxUnitMovesLimit     = 1000
)

var ErrGetUnitMovesQueryIsNotConstructed = errors.New(
	"GetUnitMovesQuery must be created via NewGetUnitMovesQuery constructor",
)

// GetUnitMovesQuery reads the move history of one unit, newest first.
type GetUnitMovesQuery struct {
	warehouseID kernel.UUID
	unitID      kernel.UUID
	limit       int

	guard guard.ConstructorGuard
}

// NewGetUnitMovesQuery builds the query. A zero limit means DefaultUnitMovesLimit.
func NewGetUnitMovesQuery(warehouseID, unitID kernel.UUID, limit int) (GetUnitMovesQuery, error) {
	if limit == 0 {
		limit = DefaultUnitMovesLimit
	}

	var limitErr error
	if limit < 1 || limit > MaxUnitMovesLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxUnitMovesLimit)
	}
	if err := errors.Join(warehouseID.Validate(), unitID.Validate(), limitErr); err != nil {
		return GetUnitMovesQuery{}, err
	}

	return GetUnitMovesQuery{
		warehouseID: warehouseID,
		unitID:      unitID,
		limit:       limit,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q GetUnitMovesQuery) Validate() error {
	return q.guard.Validate(ErrGetUnitMovesQueryIsNotConstructed)
}

func (q GetUnitMovesQuery) WarehouseID() kernel.UUID { return q.warehouseID }
func (q GetUnitMovesQuery) UnitID() kernel.UUID      { return q.unitID }
func (q GetUnitMovesQuery) Limit() int               { return q.limit }

// GetUnitMovesQueryResponse is one move of the unit. FromCellID is nil for
// the first placement.
type GetUnitMovesQueryResponse struct {
	FromCellID   *kernel.UUID
	FromCellCode string
	ToCellID     kernel.UUID
	ToCellCode   string
	ToStatus     unit.Status
	Source       movement.Source
	Actor        string
	MovedAt      time.Time
}
