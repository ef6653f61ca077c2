package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"hanzi_keep/internal/config"
	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/model"
	"hanzi_keep/internal/quiz"
	"hanzi_keep/internal/repository"
	"hanzi_keep/internal/session"
	"hanzi_keep/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeService は練習セッションの開始・回答・進行・中断と、
// ミックスセッションのモード進行を提供します
type PracticeService interface {
	StartSession(ctx context.Context, tenantID uuid.UUID, req *model.StartSessionRequest) (*model.StartSessionResponse, error)
	SubmitAnswer(ctx context.Context, tenantID, sessionID uuid.UUID, answer string) (*model.SubmitAnswerResponse, error)
	Advance(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.AdvanceResponse, error)
	GetSessionState(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.AdvanceResponse, error)
	CancelSession(ctx context.Context, tenantID, sessionID uuid.UUID) error

	StartMixed(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error)
	CompleteMixedMode(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error)
	AdvanceMixed(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error)
	GetMixedState(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error)
}

// activeSession は進行中セッションのレジストリエントリ
type activeSession struct {
	machine  *session.Machine
	tenantID uuid.UUID
	setID    uuid.UUID
	kind     model.SessionKind
	result   *model.SessionResult // 完了コールバックが設定する
}

type practiceService struct {
	db         *gorm.DB
	setRepo    repository.SetRepository
	recordRepo repository.RecordRepository
	generator  *quiz.Generator
	evaluator  *quiz.Evaluator
	scheduler  *srs.Scheduler
	cfg        *config.Config
	logger     *slog.Logger

	mu            sync.Mutex
	sessions      map[uuid.UUID]*activeSession
	orchestrators map[uuid.UUID]*session.Orchestrator // テナントごとに1つ
}

func NewPracticeService(
	db *gorm.DB,
	setRepo repository.SetRepository,
	recordRepo repository.RecordRepository,
	generator *quiz.Generator,
	evaluator *quiz.Evaluator,
	scheduler *srs.Scheduler,
	cfg *config.Config,
	logger *slog.Logger,
) PracticeService {
	return &practiceService{
		db:            db,
		setRepo:       setRepo,
		recordRepo:    recordRepo,
		generator:     generator,
		evaluator:     evaluator,
		scheduler:     scheduler,
		cfg:           cfg,
		logger:        logger,
		sessions:      make(map[uuid.UUID]*activeSession),
		orchestrators: make(map[uuid.UUID]*session.Orchestrator),
	}
}

func (s *practiceService) StartSession(ctx context.Context, tenantID uuid.UUID, req *model.StartSessionRequest) (*model.StartSessionResponse, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "set_id", req.SetID, "kind", req.Kind)

	set, err := s.setRepo.FindByID(ctx, s.db, tenantID, req.SetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "単語帳が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to load set for session", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "単語帳の取得に失敗しました。", "", err)
	}

	// 最少単語数のゲーティングはエンジンではなくここ（呼び出し側）の方針
	if len(set.Items) == 0 {
		return nil, model.NewAppError("INVALID_INPUT", "単語が登録されていない単語帳では練習を開始できません。", "", model.ErrInvalidInput)
	}

	opts := quiz.GeneratorOptions{
		Types: req.Types,
		Count: req.Count,
	}
	var timeLimit time.Duration
	switch req.Kind {
	case model.SessionLightning:
		// 制限時間内に問題が尽きないよう繰り返しプールを使う
		opts.Pool = quiz.PoolRepeatable
		timeLimit = time.Duration(s.cfg.App.LightningSeconds) * time.Second
	case model.SessionFlashcard:
		opts.Pool = quiz.PoolOnce
		if opts.Count <= 0 {
			opts.Count = len(set.Items)
		}
	default:
		opts.Pool = quiz.PoolOnce
		if opts.Count <= 0 {
			opts.Count = s.cfg.App.QuizQuestionCount
		}
	}

	questions := s.generator.Generate(set.Items, opts)

	sessionID := uuid.New()
	active := &activeSession{
		tenantID: tenantID,
		setID:    req.SetID,
		kind:     req.Kind,
	}
	active.machine = session.NewMachine(s.evaluator, session.MachineConfig{
		TimeLimit: timeLimit,
	}, s.completionCallback(sessionID, active))

	if err := active.machine.Start(questions); err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの開始に失敗しました。", "", err)
	}

	s.mu.Lock()
	s.sessions[sessionID] = active
	s.mu.Unlock()

	logger.Info("Practice session started", "session_id", sessionID, "questions", len(questions))

	resp := &model.StartSessionResponse{
		SessionID: sessionID,
		Kind:      req.Kind,
		Questions: questions,
	}
	if timeLimit > 0 {
		resp.TimeLimitSeconds = s.cfg.App.LightningSeconds
	}
	return resp, nil
}

func (s *practiceService) SubmitAnswer(ctx context.Context, tenantID, sessionID uuid.UUID, answer string) (*model.SubmitAnswerResponse, error) {
	active, err := s.findSession(tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	current, err := active.machine.Current()
	if err != nil {
		return nil, model.NewAppError("INVALID_STATE", "回答を受け付けられない状態です。", "", model.ErrInvalidState)
	}
	correct, err := active.machine.Submit(answer)
	if err != nil {
		return nil, model.NewAppError("INVALID_STATE", "回答を受け付けられない状態です。", "", model.ErrInvalidState)
	}

	return &model.SubmitAnswerResponse{
		Correct:       correct,
		CorrectAnswer: current.CorrectAnswer,
	}, nil
}

func (s *practiceService) Advance(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.AdvanceResponse, error) {
	active, err := s.findSession(tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := active.machine.Advance(); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "次の問題へ進められない状態です。", "", model.ErrInvalidState)
	}
	return s.stateResponse(tenantID, sessionID, active)
}

func (s *practiceService) GetSessionState(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.AdvanceResponse, error) {
	active, err := s.findSession(tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateResponse(tenantID, sessionID, active)
}

func (s *practiceService) CancelSession(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "session_id", sessionID)

	active, err := s.findSession(tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := active.machine.Cancel(); err != nil {
		return model.NewAppError("INVALID_STATE", "このセッションは中断できません。", "", model.ErrInvalidState)
	}

	// 中断したセッションは結果を残さず破棄する
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	logger.Info("Practice session cancelled")
	return nil
}

// stateResponse は現在のセッション状態をDTOへ写します。
// 終端に達したセッションはレジストリから取り除く。
func (s *practiceService) stateResponse(tenantID, sessionID uuid.UUID, active *activeSession) (*model.AdvanceResponse, error) {
	state := active.machine.State()
	resp := &model.AdvanceResponse{State: string(state)}

	if state.Terminal() {
		s.mu.Lock()
		resp.Result = active.result
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return resp, nil
	}

	if q, err := active.machine.Current(); err == nil {
		resp.NextQuestion = &q
	}
	return resp, nil
}

// completionCallback はセッション完了時のSRS反映と履歴保存を行うクロージャを
// 返します。タイマー満了経由で別ゴルーチンから呼ばれることがあるため、
// リクエストのコンテキストには依存しない。
func (s *practiceService) completionCallback(sessionID uuid.UUID, active *activeSession) func(model.SessionResult) {
	return func(result model.SessionResult) {
		s.mu.Lock()
		active.result = &result
		s.mu.Unlock()

		ctx := context.Background()
		logger := s.logger.With("session_id", sessionID, "tenant_id", active.tenantID)

		// 同じ単語が複数回出題された場合、全問正解のときだけ正解扱いにする
		outcome := make(map[uuid.UUID]bool)
		for _, q := range result.Questions {
			correct := quiz.Evaluate(q, q.UserAnswer)
			if prev, seen := outcome[q.ItemID]; seen {
				outcome[q.ItemID] = prev && correct
			} else {
				outcome[q.ItemID] = correct
			}
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			mutations := make([]model.VocabItem, 0, len(outcome))
			for itemID, correct := range outcome {
				item, err := s.setRepo.FindItemByID(ctx, tx, active.setID, itemID)
				if err != nil {
					// セッション中に削除された単語はスキップ
					if errors.Is(err, model.ErrNotFound) {
						continue
					}
					return err
				}
				mutations = append(mutations, s.scheduler.ApplyReview(*item, correct))
			}
			if err := s.setRepo.SaveItemMutations(ctx, tx, mutations); err != nil {
				return err
			}

			record := &model.SessionRecord{
				RecordID:    uuid.New(),
				TenantID:    active.tenantID,
				SetID:       active.setID,
				Kind:        active.kind,
				Score:       result.Score,
				Total:       result.Total,
				Expired:     active.machine.State() == session.StateExpired,
				CompletedAt: time.Now(),
			}
			return s.recordRepo.Create(ctx, tx, record)
		})
		if err != nil {
			logger.Error("Failed to persist session result", "error", err)
			return
		}
		logger.Info("Session result persisted", "score", result.Score, "total", result.Total)
	}
}

func (s *practiceService) findSession(tenantID, sessionID uuid.UUID) (*activeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.sessions[sessionID]
	if !ok || active.tenantID != tenantID {
		return nil, model.NewAppError("NOT_FOUND", "セッションが見つかりません。", "", model.ErrNotFound)
	}
	return active, nil
}

// --- ミックスセッション ---

func (s *practiceService) StartMixed(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error) {
	s.mu.Lock()
	o, ok := s.orchestrators[tenantID]
	if !ok {
		o = session.NewOrchestrator(session.OrchestratorConfig{
			Cooldown: time.Duration(s.cfg.App.MixedCooldownMs) * time.Millisecond,
		})
		s.orchestrators[tenantID] = o
	}
	s.mu.Unlock()

	o.Restart()
	middleware.GetLogger(ctx).Info("Mixed session started", "tenant_id", tenantID)
	return mixedState(o), nil
}

func (s *practiceService) CompleteMixedMode(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error) {
	o, err := s.findOrchestrator(tenantID)
	if err != nil {
		return nil, err
	}
	o.CompleteCurrentMode()
	return mixedState(o), nil
}

func (s *practiceService) AdvanceMixed(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error) {
	o, err := s.findOrchestrator(tenantID)
	if err != nil {
		return nil, err
	}
	if err := o.ManualAdvance(); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "まだ次のモードへ進められません。", "", model.ErrInvalidState)
	}
	return mixedState(o), nil
}

func (s *practiceService) GetMixedState(ctx context.Context, tenantID uuid.UUID) (*model.MixedStateResponse, error) {
	o, err := s.findOrchestrator(tenantID)
	if err != nil {
		return nil, err
	}
	return mixedState(o), nil
}

func (s *practiceService) findOrchestrator(tenantID uuid.UUID) (*session.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orchestrators[tenantID]
	if !ok {
		return nil, model.NewAppError("NOT_FOUND", "ミックスセッションが開始されていません。", "", model.ErrNotFound)
	}
	return o, nil
}

func mixedState(o *session.Orchestrator) *model.MixedStateResponse {
	resp := &model.MixedStateResponse{
		JustCompleted: o.JustCompleted(),
		AllComplete:   o.AllComplete(),
	}
	for _, mode := range o.CompletedModes() {
		resp.CompletedModes = append(resp.CompletedModes, string(mode))
	}
	if resp.CompletedModes == nil {
		resp.CompletedModes = []string{}
	}
	if mode, err := o.CurrentMode(); err == nil {
		resp.CurrentMode = string(mode)
	}
	return resp
}
