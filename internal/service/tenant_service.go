package service

import (
	"context"
	"errors"

	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantService インターフェース。AuthenticateTenant は
// middleware.TenantAuthenticator を満たす。
type TenantService interface {
	CreateTenant(ctx context.Context, name string) (*model.Tenant, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error)
	AuthenticateTenant(ctx context.Context, tenantID uuid.UUID) error
}

type tenantService struct {
	db         *gorm.DB
	tenantRepo repository.TenantRepository
}

func NewTenantService(db *gorm.DB, tenantRepo repository.TenantRepository) TenantService {
	return &tenantService{db: db, tenantRepo: tenantRepo}
}

func (s *tenantService) CreateTenant(ctx context.Context, name string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx).With("name", name)

	// 同名テナントは拒否する
	_, err := s.tenantRepo.FindByName(ctx, s.db, name)
	if err == nil {
		return nil, model.NewAppError("CONFLICT", "同じ名前のテナントが既に存在します。", "name", model.ErrConflict)
	}
	if !errors.Is(err, model.ErrNotFound) {
		logger.Error("Error checking tenant name", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "テナントの確認に失敗しました。", "", err)
	}

	tenant := &model.Tenant{
		TenantID: uuid.New(),
		Name:     name,
	}
	if err := s.tenantRepo.Create(ctx, s.db, tenant); err != nil {
		logger.Error("Error creating tenant", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "テナントの作成に失敗しました。", "", err)
	}

	logger.Info("Tenant created", "tenant_id", tenant.TenantID)
	return tenant, nil
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "テナントが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "テナントの取得に失敗しました。", "", err)
	}
	return tenant, nil
}

func (s *tenantService) AuthenticateTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.tenantRepo.FindByID(ctx, s.db, tenantID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrTenantNotFound
		}
		return err
	}
	return nil
}
