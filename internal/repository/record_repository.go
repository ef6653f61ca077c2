//go:generate mockery --name RecordRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository は完了セッションの集計行の永続化インターフェース
type RecordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *model.SessionRecord) error
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, limit int) ([]*model.SessionRecord, error)
}

type gormRecordRepository struct{}

func NewGormRecordRepository() RecordRepository {
	return &gormRecordRepository{}
}

func (r *gormRecordRepository) Create(ctx context.Context, tx *gorm.DB, record *model.SessionRecord) error {
	result := tx.WithContext(ctx).Create(record)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error creating session record in DB",
			"error", result.Error,
			"tenant_id", record.TenantID.String(),
			"set_id", record.SetID.String(),
		)
		return fmt.Errorf("gormRecordRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormRecordRepository) FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, limit int) ([]*model.SessionRecord, error) {
	var records []*model.SessionRecord
	result := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&records)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error finding session records by tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormRecordRepository.FindByTenant: %w", result.Error)
	}
	return records, nil
}
