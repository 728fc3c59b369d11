package cellrepo

import (
	"context"
	"errors"
	"slices"

	"warehouse/internal/adapters/out/postgres/pgutil"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCellRepository implements ports.CellRepository using GORM.
type GormCellRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormCellRepository(db *gorm.DB, tracker aggregateTracker) *GormCellRepository {
	return &GormCellRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormCellRepository) Add(ctx context.Context, aggregate *cell.Cell) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the flags only; code, type and warehouse never change.
func (r *GormCellRepository) Update(ctx context.Context, aggregate *cell.Cell) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&CellDTO{}).
		Where("id = ?", aggregate.ID().Raw()).
		Updates(map[string]any{
			"is_active": aggregate.IsActive(),
			"blocked":   aggregate.IsBlocked(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("cell", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormCellRepository) Get(ctx context.Context, id kernel.UUID) (*cell.Cell, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CellDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Raw()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cell", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormCellRepository) GetByCode(ctx context.Context, warehouseID kernel.UUID, code string) (*cell.Cell, error) {
	var dto CellDTO
	err := r.db.WithContext(ctx).
		First(&dto, "warehouse_id = ? AND code = ?", warehouseID.Raw(), code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cell", code)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany loads cells in chunks of batch.ChunkSize identifiers.
func (r *GormCellRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*cell.Cell, error) {
	cells := make([]*cell.Cell, 0, len(ids))
	for chunk := range slices.Chunk(ids, batch.ChunkSize) {
		var dtos []CellDTO
		if err := r.db.WithContext(ctx).
			Where("id = ANY(?::uuid[])", pgutil.UUIDArray(chunk)).
			Find(&dtos).Error; err != nil {
			return nil, err
		}

		for _, dto := range dtos {
			c, err := toDomain(dto)
			if err != nil {
				return nil, err
			}
			cells = append(cells, c)
		}
	}

	return cells, nil
}
