package taskrepo

import (
	"context"
	"errors"
	"time"

	"warehouse/internal/adapters/out/postgres/pgutil"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/core/ports"
	"warehouse/internal/pkg/batch"
	"warehouse/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository implements ports.TaskRepository using GORM.
type GormTaskRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormTaskRepository(db *gorm.DB, tracker aggregateTracker) *GormTaskRepository {
	return &GormTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the task row only. Units are written by AddUnits.
func (r *GormTaskRepository) Add(ctx context.Context, aggregate *task.Task) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormTaskRepository) AddUnits(ctx context.Context, taskID kernel.UUID, units []task.Unit) error {
	if len(units) == 0 {
		return nil
	}

	// Inside an open transaction this runs under a savepoint, so a failed
	// insert leaves the transaction usable for the caller's compensation.
	dtos := unitsFromDomain(taskID, units)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&dtos, batch.ChunkSize).Error
	})
}

func (r *GormTaskRepository) Delete(ctx context.Context, id kernel.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", id.Raw()).Delete(&TaskUnitDTO{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id.Raw()).Delete(&TaskDTO{}).Error
}

// Update writes status and actor fields. Units and creation data never change.
func (r *GormTaskRepository) Update(ctx context.Context, aggregate *task.Task) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&TaskDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "picked_by", "picked_at", "completed_by", "completed_at",
			"canceled_by", "canceled_at", "close_note").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("task", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TaskDTO
	if err := r.db.WithContext(ctx).Preload("Units").First(&dto, "id = ?", id.Raw()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("task", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTaskRepository) ListActiveUnitIDs(ctx context.Context, warehouseID kernel.UUID) ([]kernel.UUID, error) {
	active := activeStatusCodes()

	var raw []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT tu.unit_id
		FROM picking_task_units tu
		JOIN picking_tasks t ON t.id = tu.task_id
		WHERE t.warehouse_id = ? AND t.status IN ?
		UNION
		SELECT t.legacy_unit_id
		FROM picking_tasks t
		WHERE t.warehouse_id = ? AND t.status IN ? AND t.legacy_unit_id IS NOT NULL
	`, warehouseID.Raw(), active, warehouseID.Raw(), active).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		converted, err := kernel.UUIDFromRaw(id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, converted)
	}
	return ids, nil
}

func (r *GormTaskRepository) ListStale(
	ctx context.Context,
	filter ports.StaleTaskFilter,
	afterID *kernel.UUID,
	limit int,
) ([]*task.Task, error) {
	query := r.db.WithContext(ctx).
		Preload("Units").
		Where("status IN ? AND created_at < ?", activeStatusCodes(), filter.CreatedBefore)
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", filter.WarehouseID.Raw())
	}
	if filter.Scenario != nil {
		query = query.Where("scenario = ?", *filter.Scenario)
	}
	if afterID != nil {
		query = query.Where("id > ?", afterID.Raw())
	}

	var dtos []TaskDTO
	if err := query.Order("id").Limit(limit).Find(&dtos).Error; err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ForceCloseMany closes the tasks that are still active in one statement and
// returns the ids it updated. The status condition makes repeated calls close
// nothing.
func (r *GormTaskRepository) ForceCloseMany(
	ctx context.Context,
	ids []kernel.UUID,
	actor, note string,
	at time.Time,
) ([]kernel.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var updated []TaskDTO
	err := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("id IN ? AND status IN ?", pgutil.RawIDs(ids), activeStatusCodes()).
		Updates(map[string]any{
			"status":       task.Done.String(),
			"completed_by": actor,
			"completed_at": at,
			"close_note":   note,
		}).Error
	if err != nil {
		return nil, err
	}

	closed := make([]kernel.UUID, 0, len(updated))
	for _, dto := range updated {
		id, err := kernel.UUIDFromRaw(dto.ID)
		if err != nil {
			return nil, err
		}
		closed = append(closed, id)
	}
	return closed, nil
}

func activeStatusCodes() []string {
	statuses := task.ActiveStatuses()
	codes := make([]string, 0, len(statuses))
	for _, s := range statuses {
		codes = append(codes, s.String())
	}
	return codes
}
