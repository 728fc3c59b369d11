package unitrepo

import (
	"context"
	"errors"
	"slices"

	"warehouse/internal/adapters/out/postgres/pgutil"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUnitRepository implements ports.UnitRepository using GORM.
type GormUnitRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormUnitRepository(db *gorm.DB, tracker aggregateTracker) *GormUnitRepository {
	return &GormUnitRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormUnitRepository) Add(ctx context.Context, aggregate *unit.Unit) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes location, status and meta. A nil cell is written as NULL.
func (r *GormUnitRepository) Update(ctx context.Context, aggregate *unit.Unit) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&UnitDTO{}).
		Where("id = ?", dto.ID).
		Select("cell_id", "status", "meta", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("unit", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormUnitRepository) Get(ctx context.Context, id kernel.UUID) (*unit.Unit, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the row with SELECT ... FOR UPDATE. It only serializes
// anything when the repository was created inside a transaction.
func (r *GormUnitRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.Unit, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormUnitRepository) get(db *gorm.DB, id kernel.UUID) (*unit.Unit, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto UnitDTO
	if err := db.First(&dto, "id = ?", id.Raw()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("unit", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormUnitRepository) GetByBarcode(
	ctx context.Context,
	warehouseID kernel.UUID,
	barcode kernel.Barcode,
) (*unit.Unit, error) {
	var dto UnitDTO
	err := r.db.WithContext(ctx).
		First(&dto, "warehouse_id = ? AND barcode = ?", warehouseID.Raw(), barcode.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("unit", barcode.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany loads units in chunks of batch.ChunkSize identifiers.
func (r *GormUnitRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*unit.Unit, error) {
	units := make([]*unit.Unit, 0, len(ids))
	for chunk := range slices.Chunk(ids, batch.ChunkSize) {
		var dtos []UnitDTO
		if err := r.db.WithContext(ctx).
			Where("id = ANY(?::uuid[])", pgutil.UUIDArray(chunk)).
			Find(&dtos).Error; err != nil {
			return nil, err
		}

		converted, err := toDomainAll(dtos)
		if err != nil {
			return nil, err
		}
		units = append(units, converted...)
	}

	return units, nil
}

// ListInCellTypes reads matching units page by page, batch.PageSize rows at a time.
func (r *GormUnitRepository) ListInCellTypes(
	ctx context.Context,
	warehouseID kernel.UUID,
	types []cell.Type,
) ([]*unit.Unit, error) {
	if len(types) == 0 {
		return nil, nil
	}
	typeCodes := make([]string, 0, len(types))
	for _, t := range types {
		typeCodes = append(typeCodes, t.String())
	}

	var units []*unit.Unit
	var after *kernel.UUID
	for {
		query := r.db.WithContext(ctx).
			Table("units").
			Select("units.*").
			Joins("JOIN cells ON cells.id = units.cell_id").
			Where("units.warehouse_id = ? AND cells.type IN ?", warehouseID.Raw(), typeCodes).
			Order("units.id").
			Limit(batch.PageSize)
		if after != nil {
			query = query.Where("units.id > ?", after.Raw())
		}

		var dtos []UnitDTO
		if err := query.Find(&dtos).Error; err != nil {
			return nil, err
		}

		page, err := toDomainAll(dtos)
		if err != nil {
			return nil, err
		}
		units = append(units, page...)

		if len(page) < batch.PageSize {
			return units, nil
		}
		last := page[len(page)-1].ID()
		after = &last
	}
}

func toDomainAll(dtos []UnitDTO) ([]*unit.Unit, error) {
	units := make([]*unit.Unit, 0, len(dtos))
	for _, dto := range dtos {
		u, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}
