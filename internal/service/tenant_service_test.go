// internal/service/tenant_service_test.go
package service

import (
	"context"
	"testing"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_tenantService_CreateTenant(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()

	tests := []struct {
		name      string
		tenant    string
		setupMock func(repo *mocks.TenantRepository)
		wantErr   error
	}{
		{
			name:   "正常系: テナント作成成功",
			tenant: "student-a",
			setupMock: func(repo *mocks.TenantRepository) {
				repo.On("FindByName", ctx, mock.AnythingOfType("*gorm.DB"), "student-a").
					Return(nil, model.ErrNotFound).Once()
				repo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Tenant")).
					Run(func(args mock.Arguments) {
						tenant := args.Get(2).(*model.Tenant)
						assert.Equal(t, "student-a", tenant.Name)
						assert.NotEqual(t, uuid.Nil, tenant.TenantID)
					}).Return(nil).Once()
			},
		},
		{
			name:   "異常系: 同名テナントはCONFLICT",
			tenant: "student-a",
			setupMock: func(repo *mocks.TenantRepository) {
				repo.On("FindByName", ctx, mock.AnythingOfType("*gorm.DB"), "student-a").
					Return(&model.Tenant{TenantID: uuid.New(), Name: "student-a"}, nil).Once()
			},
			wantErr: model.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.TenantRepository)
			tt.setupMock(repo)
			svc := NewTenantService(db, repo)

			tenant, err := svc.CreateTenant(ctx, tt.tenant)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.tenant, tenant.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func Test_tenantService_AuthenticateTenant(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	tenantID := uuid.New()

	t.Run("正常系: 既存テナントは認証を通る", func(t *testing.T) {
		repo := new(mocks.TenantRepository)
		repo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID).
			Return(&model.Tenant{TenantID: tenantID, Name: "student-a"}, nil).Once()
		svc := NewTenantService(db, repo)

		require.NoError(t, svc.AuthenticateTenant(ctx, tenantID))
	})

	t.Run("異常系: 未知のテナントはErrTenantNotFound", func(t *testing.T) {
		repo := new(mocks.TenantRepository)
		repo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID).
			Return(nil, model.ErrNotFound).Once()
		svc := NewTenantService(db, repo)

		require.ErrorIs(t, svc.AuthenticateTenant(ctx, tenantID), model.ErrTenantNotFound)
	})
}
