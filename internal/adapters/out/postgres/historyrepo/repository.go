package historyrepo

import (
	"context"

	"warehouse/internal/core/domain/model/history"

	"gorm.io/gorm"
)

// GormHistoryRepository implements ports.HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

func (r *GormHistoryRepository) Add(ctx context.Context, event *history.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(event)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}
