// internal/service/progress_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"hanzi_keep/internal/config"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/repository/mocks"
	"hanzi_keep/internal/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_progressService_GetDueSummary(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	tenantID := uuid.New()
	setID := uuid.New()

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	setRepo := new(mocks.SetRepository)
	setRepo.On("FindByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID).
		Return([]*model.VocabSet{
			{
				SetID: setID, TenantID: tenantID, Title: "HSK1",
				Items: []model.VocabItem{
					{ItemID: uuid.New(), NextReviewDate: &yesterday}, // 期限超過
					{ItemID: uuid.New(), NextReviewDate: &nextWeek},  // まだ先
					{ItemID: uuid.New()},                             // 未学習
				},
			},
		}, nil).Once()
	recordRepo := new(mocks.RecordRepository)
	cfg := &config.Config{App: config.AppConfig{ReviewLimit: 20}}
	svc := NewProgressService(db, setRepo, recordRepo, srs.NewScheduler(nil, nil), cfg)

	summary, err := svc.GetDueSummary(ctx, tenantID)

	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, setID, summary[0].SetID)
	assert.Equal(t, 1, summary[0].DueCount)
	setRepo.AssertExpectations(t)
}

func Test_progressService_GetMasteryDistribution(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	tenantID := uuid.New()

	setRepo := new(mocks.SetRepository)
	setRepo.On("FindByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID).
		Return([]*model.VocabSet{
			{
				SetID: uuid.New(), TenantID: tenantID,
				Items: []model.VocabItem{
					{SrsLevel: 0}, // new
					{SrsLevel: 1}, // learning
					{SrsLevel: 2}, // learning
					{SrsLevel: 4}, // known
					{SrsLevel: 6}, // mastered
				},
			},
		}, nil).Once()
	recordRepo := new(mocks.RecordRepository)
	cfg := &config.Config{App: config.AppConfig{ReviewLimit: 20}}
	svc := NewProgressService(db, setRepo, recordRepo, srs.NewScheduler(nil, nil), cfg)

	dist, err := svc.GetMasteryDistribution(ctx, tenantID)

	require.NoError(t, err)
	assert.Equal(t, 1, dist.New)
	assert.Equal(t, 2, dist.Learning)
	assert.Equal(t, 1, dist.Known)
	assert.Equal(t, 1, dist.Mastered)
}

func Test_progressService_SubmitReview(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	tenantID := uuid.New()
	setID := uuid.New()
	itemID := uuid.New()

	// 時刻を固定して次回復習日を決定的にする
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scheduler := srs.NewScheduler(func() time.Time { return now }, nil)
	cfg := &config.Config{App: config.AppConfig{ReviewLimit: 20}}

	tests := []struct {
		name       string
		startLevel int
		isCorrect  bool
		wantLevel  int
		wantNext   time.Time
		wantNeeds  bool
	}{
		{
			name:       "正常系: 正解でレベルが上がり間隔が伸びる",
			startLevel: 1,
			isCorrect:  true,
			wantLevel:  2,
			wantNext:   now.AddDate(0, 0, 3),
			wantNeeds:  false,
		},
		{
			name:       "正常系: 不正解でレベル0に戻り翌日再出題",
			startLevel: 4,
			isCorrect:  false,
			wantLevel:  0,
			wantNext:   now.AddDate(0, 0, 1),
			wantNeeds:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRepo := new(mocks.SetRepository)
			setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
				Return(&model.VocabSet{SetID: setID, TenantID: tenantID}, nil).Once()
			setRepo.On("FindItemByID", ctx, mock.AnythingOfType("*gorm.DB"), setID, itemID).
				Return(&model.VocabItem{ItemID: itemID, SetID: setID, SrsLevel: tt.startLevel}, nil).Once()
			setRepo.On("SaveItemMutations", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("[]model.VocabItem")).
				Return(nil).Once()
			recordRepo := new(mocks.RecordRepository)
			svc := NewProgressService(db, setRepo, recordRepo, scheduler, cfg)

			item, err := svc.SubmitReview(ctx, tenantID, setID, itemID, tt.isCorrect)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, item.SrsLevel)
			assert.Equal(t, tt.wantNeeds, item.NeedsReview)
			require.NotNil(t, item.NextReviewDate)
			assert.Equal(t, tt.wantNext, *item.NextReviewDate)
			setRepo.AssertExpectations(t)
		})
	}

	t.Run("異常系: 他テナントの単語帳はNOT_FOUND", func(t *testing.T) {
		setRepo := new(mocks.SetRepository)
		setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
			Return(nil, model.ErrNotFound).Once()
		recordRepo := new(mocks.RecordRepository)
		svc := NewProgressService(db, setRepo, recordRepo, scheduler, cfg)

		_, err := svc.SubmitReview(ctx, tenantID, setID, itemID, true)

		require.ErrorIs(t, err, model.ErrNotFound)
		setRepo.AssertNotCalled(t, "FindItemByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func Test_progressService_GetRecentRecords(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	tenantID := uuid.New()

	setRepo := new(mocks.SetRepository)
	recordRepo := new(mocks.RecordRepository)
	// 設定した上限件数がそのままリポジトリへ渡る
	recordRepo.On("FindByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, 5).
		Return([]*model.SessionRecord{{RecordID: uuid.New(), TenantID: tenantID}}, nil).Once()
	cfg := &config.Config{App: config.AppConfig{ReviewLimit: 5}}
	svc := NewProgressService(db, setRepo, recordRepo, srs.NewScheduler(nil, nil), cfg)

	records, err := svc.GetRecentRecords(ctx, tenantID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	recordRepo.AssertExpectations(t)
}
