// internal/service/practice_service_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"hanzi_keep/internal/config"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/quiz"
	"hanzi_keep/internal/repository/mocks"
	"hanzi_keep/internal/session"
	"hanzi_keep/internal/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func practiceTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			ReviewLimit:       20,
			QuizQuestionCount: 4,
			LightningSeconds:  60,
			// テスト中に自動進行しないよう長めに取る
			MixedCooldownMs: 60000,
		},
	}
}

func newPracticeServiceForTest(setRepo *mocks.SetRepository, recordRepo *mocks.RecordRepository) PracticeService {
	db := setupTestDB()
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPracticeService(
		db,
		setRepo,
		recordRepo,
		quiz.NewGenerator(nil),
		quiz.NewEvaluator(nil),
		srs.NewScheduler(nil, nil),
		practiceTestConfig(),
		testLogger,
	)
}

func practiceTestSet(tenantID, setID uuid.UUID) *model.VocabSet {
	return &model.VocabSet{
		SetID:    setID,
		TenantID: tenantID,
		Title:    "HSK1",
		Items: []model.VocabItem{
			{ItemID: uuid.New(), SetID: setID, Position: 0, Hanzi: "水", Pinyin: "shuǐ", Meaning: "water"},
			{ItemID: uuid.New(), SetID: setID, Position: 1, Hanzi: "火", Pinyin: "huǒ", Meaning: "fire"},
			{ItemID: uuid.New(), SetID: setID, Position: 2, Hanzi: "山", Pinyin: "shān", Meaning: "mountain"},
			{ItemID: uuid.New(), SetID: setID, Position: 3, Hanzi: "人", Pinyin: "rén", Meaning: "person"},
		},
	}
}

func Test_practiceService_QuizFlow(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	setID := uuid.New()
	set := practiceTestSet(tenantID, setID)

	setRepo := new(mocks.SetRepository)
	setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
		Return(set, nil).Once()
	// 完了コールバックはリクエストコンテキストに依存しない
	setRepo.On("FindItemByID", mock.Anything, mock.AnythingOfType("*gorm.DB"), setID, mock.AnythingOfType("uuid.UUID")).
		Return(&set.Items[0], nil).Times(4)
	setRepo.On("SaveItemMutations", mock.Anything, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(items []model.VocabItem) bool {
		return len(items) == 4
	})).Return(nil).Once()
	recordRepo := new(mocks.RecordRepository)
	recordRepo.On("Create", mock.Anything, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(rec *model.SessionRecord) bool {
		return rec.TenantID == tenantID && rec.SetID == setID &&
			rec.Kind == model.SessionQuiz && rec.Score == 4 && rec.Total == 4 && !rec.Expired
	})).Return(nil).Once()

	svc := newPracticeServiceForTest(setRepo, recordRepo)

	resp, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{
		SetID: setID,
		Kind:  model.SessionQuiz,
	})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 4)
	assert.Zero(t, resp.TimeLimitSeconds)

	// 全問正解で完走する
	for i, q := range resp.Questions {
		ans, err := svc.SubmitAnswer(ctx, tenantID, resp.SessionID, q.CorrectAnswer)
		require.NoError(t, err)
		assert.True(t, ans.Correct)
		assert.Equal(t, q.CorrectAnswer, ans.CorrectAnswer)

		adv, err := svc.Advance(ctx, tenantID, resp.SessionID)
		require.NoError(t, err)
		if i < len(resp.Questions)-1 {
			assert.Equal(t, string(session.StateInProgress), adv.State)
			require.NotNil(t, adv.NextQuestion)
		} else {
			assert.Equal(t, string(session.StateComplete), adv.State)
			require.NotNil(t, adv.Result)
			assert.Equal(t, 4, adv.Result.Score)
			assert.Equal(t, 4, adv.Result.Total)
		}
	}

	// 完了したセッションはレジストリから消える
	_, err = svc.SubmitAnswer(ctx, tenantID, resp.SessionID, "x")
	require.ErrorIs(t, err, model.ErrNotFound)

	setRepo.AssertExpectations(t)
	recordRepo.AssertExpectations(t)
}

func Test_practiceService_StartSession(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	setID := uuid.New()

	t.Run("異常系: 空の単語帳では開始できない", func(t *testing.T) {
		setRepo := new(mocks.SetRepository)
		setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
			Return(&model.VocabSet{SetID: setID, TenantID: tenantID}, nil).Once()
		svc := newPracticeServiceForTest(setRepo, new(mocks.RecordRepository))

		_, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionQuiz})

		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 存在しない単語帳はNOT_FOUND", func(t *testing.T) {
		setRepo := new(mocks.SetRepository)
		setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
			Return(nil, model.ErrNotFound).Once()
		svc := newPracticeServiceForTest(setRepo, new(mocks.RecordRepository))

		_, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionQuiz})

		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("正常系: lightningは制限時間付きで繰り返しプールを使う", func(t *testing.T) {
		setRepo := new(mocks.SetRepository)
		setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
			Return(practiceTestSet(tenantID, setID), nil).Once()
		svc := newPracticeServiceForTest(setRepo, new(mocks.RecordRepository))

		resp, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionLightning})

		require.NoError(t, err)
		assert.Equal(t, 60, resp.TimeLimitSeconds)
		// 4語 × 3周
		assert.Len(t, resp.Questions, 12)

		// タイマーを止めるため後始末する
		require.NoError(t, svc.CancelSession(ctx, tenantID, resp.SessionID))
	})

	t.Run("正常系: flashcardは全単語を1周する", func(t *testing.T) {
		setRepo := new(mocks.SetRepository)
		setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
			Return(practiceTestSet(tenantID, setID), nil).Once()
		svc := newPracticeServiceForTest(setRepo, new(mocks.RecordRepository))

		resp, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionFlashcard})

		require.NoError(t, err)
		assert.Len(t, resp.Questions, 4)
		assert.Zero(t, resp.TimeLimitSeconds)
	})
}

func Test_practiceService_CancelSession(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	setID := uuid.New()

	setRepo := new(mocks.SetRepository)
	setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, setID).
		Return(practiceTestSet(tenantID, setID), nil).Once()
	recordRepo := new(mocks.RecordRepository)
	svc := newPracticeServiceForTest(setRepo, recordRepo)

	resp, err := svc.StartSession(ctx, tenantID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionQuiz})
	require.NoError(t, err)

	require.NoError(t, svc.CancelSession(ctx, tenantID, resp.SessionID))

	// 中断後はセッションが存在しない
	_, err = svc.Advance(ctx, tenantID, resp.SessionID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// 中断ではSRSも履歴も更新されない
	setRepo.AssertNotCalled(t, "SaveItemMutations", mock.Anything, mock.Anything, mock.Anything)
	recordRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func Test_practiceService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	otherID := uuid.New()
	setID := uuid.New()

	setRepo := new(mocks.SetRepository)
	setRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), ownerID, setID).
		Return(practiceTestSet(ownerID, setID), nil).Once()
	svc := newPracticeServiceForTest(setRepo, new(mocks.RecordRepository))

	resp, err := svc.StartSession(ctx, ownerID, &model.StartSessionRequest{SetID: setID, Kind: model.SessionQuiz})
	require.NoError(t, err)

	// 他テナントからはセッションが見えない
	_, err = svc.SubmitAnswer(ctx, otherID, resp.SessionID, "x")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.GetSessionState(ctx, otherID, resp.SessionID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func Test_practiceService_MixedFlow(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc := newPracticeServiceForTest(new(mocks.SetRepository), new(mocks.RecordRepository))

	t.Run("異常系: 開始前は状態を取得できない", func(t *testing.T) {
		_, err := svc.GetMixedState(ctx, tenantID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	state, err := svc.StartMixed(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, string(session.ModeFlashcard), state.CurrentMode)
	assert.Empty(t, state.CompletedModes)
	assert.False(t, state.JustCompleted)
	assert.False(t, state.AllComplete)

	t.Run("異常系: 完了前の手動進行は拒否される", func(t *testing.T) {
		_, err := svc.AdvanceMixed(ctx, tenantID)
		require.ErrorIs(t, err, model.ErrInvalidState)
	})

	// 完了通知は冪等
	state, err = svc.CompleteMixedMode(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, state.JustCompleted)
	state, err = svc.CompleteMixedMode(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, []string{string(session.ModeFlashcard)}, state.CompletedModes)

	// 手動進行で次のモードへ
	state, err = svc.AdvanceMixed(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, string(session.ModeMatching), state.CurrentMode)
	assert.False(t, state.JustCompleted)

	// 残りのモードをすべて完了させる。最後のモードの先へ進むと全完了になる
	for i := 1; i < len(session.ModeOrder); i++ {
		_, err = svc.CompleteMixedMode(ctx, tenantID)
		require.NoError(t, err)
		state, err = svc.AdvanceMixed(ctx, tenantID)
		require.NoError(t, err)
	}
	assert.True(t, state.AllComplete)
	assert.Empty(t, state.CurrentMode)
	assert.Len(t, state.CompletedModes, len(session.ModeOrder))

	// 再開始で最初のモードへ戻る
	state, err = svc.StartMixed(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, string(session.ModeFlashcard), state.CurrentMode)
	assert.Empty(t, state.CompletedModes)
}
