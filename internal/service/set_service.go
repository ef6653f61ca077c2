package service

import (
	"context"
	"errors"

	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/pinyin"
	"hanzi_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SetService は単語帳と単語のCRUDを提供します
type SetService interface {
	CreateSet(ctx context.Context, tenantID uuid.UUID, req *model.PostSetRequest) (*model.VocabSet, error)
	GetSet(ctx context.Context, tenantID, setID uuid.UUID) (*model.VocabSet, error)
	ListSets(ctx context.Context, tenantID uuid.UUID) ([]*model.VocabSet, error)
	PatchSet(ctx context.Context, tenantID, setID uuid.UUID, req *model.PatchSetRequest) (*model.VocabSet, error)
	DeleteSet(ctx context.Context, tenantID, setID uuid.UUID) error
	AddItem(ctx context.Context, tenantID, setID uuid.UUID, req *model.PostItemRequest) (*model.VocabItem, error)
	PatchItem(ctx context.Context, tenantID, setID, itemID uuid.UUID, req *model.PatchItemRequest) (*model.VocabItem, error)
	DeleteItem(ctx context.Context, tenantID, setID, itemID uuid.UUID) error
}

type setService struct {
	db      *gorm.DB
	setRepo repository.SetRepository
}

func NewSetService(db *gorm.DB, setRepo repository.SetRepository) SetService {
	return &setService{db: db, setRepo: setRepo}
}

func (s *setService) CreateSet(ctx context.Context, tenantID uuid.UUID, req *model.PostSetRequest) (*model.VocabSet, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	set := &model.VocabSet{
		SetID:       uuid.New(),
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
	}
	for i, itemReq := range req.Items {
		set.Items = append(set.Items, model.VocabItem{
			ItemID:   uuid.New(),
			SetID:    set.SetID,
			Position: i,
			Hanzi:    itemReq.Hanzi,
			// 数字声調入力はここで正規形に揃える
			Pinyin:          pinyin.Normalize(itemReq.Pinyin),
			Meaning:         itemReq.Meaning,
			ExampleSentence: itemReq.ExampleSentence,
		})
	}

	if err := s.setRepo.Create(ctx, s.db, set); err != nil {
		logger.Error("Error creating vocab set", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の作成に失敗しました。", "", err)
	}

	logger.Info("Vocab set created", "set_id", set.SetID, "items", len(set.Items))
	return set, nil
}

func (s *setService) GetSet(ctx context.Context, tenantID, setID uuid.UUID) (*model.VocabSet, error) {
	set, err := s.setRepo.FindByID(ctx, s.db, tenantID, setID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の取得に失敗しました。", "", err)
	}
	return set, nil
}

func (s *setService) ListSets(ctx context.Context, tenantID uuid.UUID) ([]*model.VocabSet, error) {
	sets, err := s.setRepo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳一覧の取得に失敗しました。", "", err)
	}
	return sets, nil
}

func (s *setService) PatchSet(ctx context.Context, tenantID, setID uuid.UUID, req *model.PatchSetRequest) (*model.VocabSet, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID)

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if len(updates) == 0 {
		return s.GetSet(ctx, tenantID, setID)
	}

	if err := s.setRepo.Update(ctx, s.db, tenantID, setID, updates); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error updating vocab set", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の更新に失敗しました。", "", err)
	}
	return s.GetSet(ctx, tenantID, setID)
}

func (s *setService) DeleteSet(ctx context.Context, tenantID, setID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID)

	if err := s.setRepo.Delete(ctx, s.db, tenantID, setID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error deleting vocab set", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の削除に失敗しました。", "", err)
	}
	logger.Info("Vocab set deleted")
	return nil
}

func (s *setService) AddItem(ctx context.Context, tenantID, setID uuid.UUID, req *model.PostItemRequest) (*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID)

	// セットの所有確認を兼ねて取得する
	set, err := s.GetSet(ctx, tenantID, setID)
	if err != nil {
		return nil, err
	}

	item := &model.VocabItem{
		ItemID:          uuid.New(),
		SetID:           setID,
		Position:        len(set.Items),
		Hanzi:           req.Hanzi,
		Pinyin:          pinyin.Normalize(req.Pinyin),
		Meaning:         req.Meaning,
		ExampleSentence: req.ExampleSentence,
	}
	if err := s.setRepo.CreateItem(ctx, s.db, item); err != nil {
		logger.Error("Error creating vocab item", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語の追加に失敗しました。", "", err)
	}
	return item, nil
}

func (s *setService) PatchItem(ctx context.Context, tenantID, setID, itemID uuid.UUID, req *model.PatchItemRequest) (*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID, "item_id", itemID)

	// セットの所有確認
	if _, err := s.GetSet(ctx, tenantID, setID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Hanzi != nil {
		updates["hanzi"] = *req.Hanzi
	}
	if req.Pinyin != nil {
		updates["pinyin"] = pinyin.Normalize(*req.Pinyin)
	}
	if req.Meaning != nil {
		updates["meaning"] = *req.Meaning
	}
	if req.ExampleSentence != nil {
		updates["example_sentence"] = *req.ExampleSentence
	}
	if req.NeedsReview != nil {
		updates["needs_review"] = *req.NeedsReview
	}

	if len(updates) > 0 {
		if err := s.setRepo.UpdateItem(ctx, s.db, setID, itemID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.NewAppError("NOT_FOUND", "単語が見つかりません。", "", model.ErrNotFound)
			}
			logger.Error("Error updating vocab item", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語の更新に失敗しました。", "", err)
		}
	}

	item, err := s.setRepo.FindItemByID(ctx, s.db, setID, itemID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語の取得に失敗しました。", "", err)
	}
	return item, nil
}

func (s *setService) DeleteItem(ctx context.Context, tenantID, setID, itemID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", setID, "item_id", itemID)

	if _, err := s.GetSet(ctx, tenantID, setID); err != nil {
		return err
	}
	if err := s.setRepo.DeleteItem(ctx, s.db, setID, itemID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "単語が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error deleting vocab item", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "単語の削除に失敗しました。", "", err)
	}
	return nil
}
