package service

import (
	"context"
	"errors"
	"time"

	"hanzi_keep/internal/config"
	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/repository"
	"hanzi_keep/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService は習熟状態への問い合わせと復習結果の反映を提供します
type ProgressService interface {
	GetDueSummary(ctx context.Context, tenantID uuid.UUID) ([]model.DueSetSummary, error)
	GetMasteryDistribution(ctx context.Context, tenantID uuid.UUID) (model.MasteryDistribution, error)
	SubmitReview(ctx context.Context, tenantID, setID, itemID uuid.UUID, isCorrect bool) (*model.VocabItem, error)
	GetRecentRecords(ctx context.Context, tenantID uuid.UUID) ([]*model.SessionRecord, error)
}

type progressService struct {
	db         *gorm.DB
	setRepo    repository.SetRepository
	recordRepo repository.RecordRepository
	scheduler  *srs.Scheduler
	cfg        *config.Config
}

func NewProgressService(db *gorm.DB, setRepo repository.SetRepository, recordRepo repository.RecordRepository, scheduler *srs.Scheduler, cfg *config.Config) ProgressService {
	return &progressService{
		db:         db,
		setRepo:    setRepo,
		recordRepo: recordRepo,
		scheduler:  scheduler,
		cfg:        cfg,
	}
}

func (s *progressService) GetDueSummary(ctx context.Context, tenantID uuid.UUID) ([]model.DueSetSummary, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	sets, err := s.setRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to load sets for due summary", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習サマリの取得に失敗しました。", "", err)
	}

	values := make([]model.VocabSet, 0, len(sets))
	for _, set := range sets {
		values = append(values, *set)
	}
	summary := s.scheduler.DueItems(values, time.Now())
	logger.Info("Due summary computed", "sets_due", len(summary))
	return summary, nil
}

func (s *progressService) GetMasteryDistribution(ctx context.Context, tenantID uuid.UUID) (model.MasteryDistribution, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	sets, err := s.setRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to load sets for mastery distribution", "error", err)
		return model.MasteryDistribution{}, model.NewAppError("INTERNAL_SERVER_ERROR", "習熟度集計の取得に失敗しました。", "", err)
	}

	values := make([]model.VocabSet, 0, len(sets))
	for _, set := range sets {
		values = append(values, *set)
	}
	return s.scheduler.Bucketize(values), nil
}

// SubmitReview はフラッシュカード復習1枚分の結果を反映します。
// レベルと次回復習日の計算は注入されたLevelStrategy経由で行い、保存して返す。
func (s *progressService) SubmitReview(ctx context.Context, tenantID, setID, itemID uuid.UUID, isCorrect bool) (*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID, "item_id", itemID)

	// セット所有の確認
	if _, err := s.setRepo.FindByID(ctx, s.db, tenantID, setID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の確認に失敗しました。", "", err)
	}

	item, err := s.setRepo.FindItemByID(ctx, s.db, setID, itemID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語の取得に失敗しました。", "", err)
	}

	updated := s.scheduler.ApplyReview(*item, isCorrect)
	if err := s.setRepo.SaveItemMutations(ctx, s.db, []model.VocabItem{updated}); err != nil {
		logger.Error("Failed to save review outcome", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習結果の保存に失敗しました。", "", err)
	}

	logger.Info("Review outcome applied", "is_correct", isCorrect, "new_level", updated.SrsLevel)
	return &updated, nil
}

func (s *progressService) GetRecentRecords(ctx context.Context, tenantID uuid.UUID) ([]*model.SessionRecord, error) {
	records, err := s.recordRepo.FindByTenant(ctx, s.db, tenantID, s.cfg.App.ReviewLimit)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習履歴の取得に失敗しました。", "", err)
	}
	return records, nil
}
