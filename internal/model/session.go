// internal/model/session.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionKind は練習セッションの種別
type SessionKind string

const (
	SessionQuiz      SessionKind = "quiz"      // 標準クイズ（問題を使い切ったら終了）
	SessionFlashcard SessionKind = "flashcard" // フラッシュカード復習
	SessionLightning SessionKind = "lightning" // 制限時間付きクイズ
)

// SessionRecord は完了したセッションの集計行。結果表示と学習履歴のために永続化する。
// 個々のQuizQuestionは保存しない（エフェメラル）。
type SessionRecord struct {
	RecordID    uuid.UUID   `gorm:"type:uuid;primaryKey" json:"record_id"`
	TenantID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"-"`
	SetID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"set_id"`
	Kind        SessionKind `gorm:"not null" json:"kind"`
	Score       int         `gorm:"not null" json:"score"`
	Total       int         `gorm:"not null" json:"total"`
	Expired     bool        `gorm:"not null;default:false" json:"expired"` // 時間切れ終了か
	CompletedAt time.Time   `gorm:"not null;index" json:"completed_at"`
}

func (SessionRecord) TableName() string {
	return "session_records"
}

// セッション開始リクエストDTO
type StartSessionRequest struct {
	SetID uuid.UUID    `json:"set_id" validate:"required"`
	Kind  SessionKind  `json:"kind" validate:"required,oneof=quiz flashcard lightning"`
	Types []QuestionType `json:"types" validate:"omitempty,dive,oneof=meaning hanzi pinyin"`
	Count int          `json:"count" validate:"omitempty,min=1"`
}

// セッション開始レスポンスDTO
type StartSessionResponse struct {
	SessionID uuid.UUID      `json:"session_id"`
	Kind      SessionKind    `json:"kind"`
	Questions []QuizQuestion `json:"questions"`
	// lightningのみ: 制限時間（秒）
	TimeLimitSeconds int `json:"time_limit_seconds,omitempty"`
}

// 回答送信リクエストDTO
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// 回答送信レスポンスDTO
type SubmitAnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// 次の問題へ進むレスポンスDTO。セッションが終端へ達した場合はResultを含む。
type AdvanceResponse struct {
	State        string         `json:"state"`
	NextQuestion *QuizQuestion  `json:"next_question,omitempty"`
	Result       *SessionResult `json:"result,omitempty"`
}

// ミックスセッションの状態レスポンスDTO
type MixedStateResponse struct {
	CurrentMode    string   `json:"current_mode,omitempty"`
	CompletedModes []string `json:"completed_modes"`
	JustCompleted  bool     `json:"just_completed"`
	AllComplete    bool     `json:"all_complete"`
}
