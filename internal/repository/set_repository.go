//go:generate mockery --name SetRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SetRepository は単語帳とその単語の永続化インターフェース
type SetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, set *model.VocabSet) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, setID uuid.UUID) (*model.VocabSet, error)
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]*model.VocabSet, error)
	Update(ctx context.Context, tx *gorm.DB, tenantID, setID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID, setID uuid.UUID) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.VocabItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, setID, itemID uuid.UUID) (*model.VocabItem, error)
	UpdateItem(ctx context.Context, tx *gorm.DB, setID, itemID uuid.UUID, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, tx *gorm.DB, setID, itemID uuid.UUID) error
	// SaveItemMutations はセッション完了時のSRS反映をまとめて保存します
	SaveItemMutations(ctx context.Context, tx *gorm.DB, items []model.VocabItem) error
}

type gormSetRepository struct{}

func NewGormSetRepository() SetRepository {
	return &gormSetRepository{}
}

func (r *gormSetRepository) Create(ctx context.Context, tx *gorm.DB, set *model.VocabSet) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(set)
	if result.Error != nil {
		logger.Error("Error creating vocab set in DB",
			"error", result.Error,
			"tenant_id", set.TenantID.String(),
			"title", set.Title,
		)
		return fmt.Errorf("gormSetRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormSetRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, setID uuid.UUID) (*model.VocabSet, error) {
	var set model.VocabSet
	result := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("vocab_items.position ASC")
		}).
		Where("tenant_id = ? AND set_id = ?", tenantID, setID).
		First(&set)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding vocab set by ID in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
			"set_id", setID.String(),
		)
		return nil, fmt.Errorf("gormSetRepository.FindByID: %w", result.Error)
	}
	return &set, nil
}

func (r *gormSetRepository) FindByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) ([]*model.VocabSet, error) {
	var sets []*model.VocabSet
	result := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("vocab_items.position ASC")
		}).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&sets)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error finding vocab sets by tenant in DB",
			"error", result.Error,
			"tenant_id", tenantID.String(),
		)
		return nil, fmt.Errorf("gormSetRepository.FindByTenant: %w", result.Error)
	}
	return sets, nil
}

func (r *gormSetRepository) Update(ctx context.Context, tx *gorm.DB, tenantID, setID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.VocabSet{}).
		Where("tenant_id = ? AND set_id = ?", tenantID, setID).
		Updates(updates)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error updating vocab set in DB",
			"error", result.Error,
			"set_id", setID.String(),
		)
		return fmt.Errorf("gormSetRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSetRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, setID uuid.UUID) error {
	// 論理削除。Itemsは物理的には残るがセット経由でしか参照されない
	result := tx.WithContext(ctx).
		Where("tenant_id = ? AND set_id = ?", tenantID, setID).
		Delete(&model.VocabSet{})
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error deleting vocab set in DB",
			"error", result.Error,
			"set_id", setID.String(),
		)
		return fmt.Errorf("gormSetRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSetRepository) CreateItem(ctx context.Context, tx *gorm.DB, item *model.VocabItem) error {
	result := tx.WithContext(ctx).Create(item)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error creating vocab item in DB",
			"error", result.Error,
			"set_id", item.SetID.String(),
			"hanzi", item.Hanzi,
		)
		return fmt.Errorf("gormSetRepository.CreateItem: %w", result.Error)
	}
	return nil
}

func (r *gormSetRepository) FindItemByID(ctx context.Context, db *gorm.DB, setID, itemID uuid.UUID) (*model.VocabItem, error) {
	var item model.VocabItem
	result := db.WithContext(ctx).Where("set_id = ? AND item_id = ?", setID, itemID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding vocab item by ID in DB",
			"error", result.Error,
			"item_id", itemID.String(),
		)
		return nil, fmt.Errorf("gormSetRepository.FindItemByID: %w", result.Error)
	}
	return &item, nil
}

func (r *gormSetRepository) UpdateItem(ctx context.Context, tx *gorm.DB, setID, itemID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.VocabItem{}).
		Where("set_id = ? AND item_id = ?", setID, itemID).
		Updates(updates)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error updating vocab item in DB",
			"error", result.Error,
			"item_id", itemID.String(),
		)
		return fmt.Errorf("gormSetRepository.UpdateItem: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSetRepository) DeleteItem(ctx context.Context, tx *gorm.DB, setID, itemID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("set_id = ? AND item_id = ?", setID, itemID).
		Delete(&model.VocabItem{})
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error deleting vocab item in DB",
			"error", result.Error,
			"item_id", itemID.String(),
		)
		return fmt.Errorf("gormSetRepository.DeleteItem: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSetRepository) SaveItemMutations(ctx context.Context, tx *gorm.DB, items []model.VocabItem) error {
	logger := middleware.GetLogger(ctx)
	for _, item := range items {
		result := tx.WithContext(ctx).Model(&model.VocabItem{}).
			Where("item_id = ?", item.ItemID).
			Updates(map[string]interface{}{
				"srs_level":        item.SrsLevel,
				"next_review_date": item.NextReviewDate,
				"needs_review":     item.NeedsReview,
			})
		if result.Error != nil {
			logger.Error("Error saving item mutation in DB",
				"error", result.Error,
				"item_id", item.ItemID.String(),
			)
			return fmt.Errorf("gormSetRepository.SaveItemMutations: %w", result.Error)
		}
	}
	return nil
}
