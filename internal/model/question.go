// internal/model/question.go
package model

import "github.com/google/uuid"

// QuestionType は出題形式を表します
type QuestionType string

const (
	QuestionMeaning QuestionType = "meaning" // 漢字を見て意味を選ぶ
	QuestionHanzi   QuestionType = "hanzi"   // 意味を見て漢字を選ぶ
	QuestionPinyin  QuestionType = "pinyin"  // 漢字を見て拼音を入力する
)

// AllQuestionTypes は全出題形式（巡回順）
var AllQuestionTypes = []QuestionType{QuestionMeaning, QuestionHanzi, QuestionPinyin}

// QuizQuestion は生成された一問を表します。セッション終了時に破棄され、永続化されない。
// 不変条件: Options は pinyin 形式では常に空、選択形式では重複なしで
// CorrectAnswer をちょうど1つ含む。コンストラクタ経由でのみ生成すること。
type QuizQuestion struct {
	Type          QuestionType `json:"type"`
	ItemID        uuid.UUID    `json:"item_id"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"` // 選択形式のみ
	CorrectAnswer string       `json:"-"`
	UserAnswer    string       `json:"user_answer,omitempty"` // 回答時に一度だけ設定される
	Answered      bool         `json:"answered"`
}

// NewChoiceQuestion は選択形式（meaning / hanzi）の問題を生成します
func NewChoiceQuestion(qType QuestionType, itemID uuid.UUID, prompt, correct string, options []string) QuizQuestion {
	return QuizQuestion{
		Type:          qType,
		ItemID:        itemID,
		Prompt:        prompt,
		Options:       options,
		CorrectAnswer: correct,
	}
}

// NewFreeTextQuestion は自由入力形式（pinyin）の問題を生成します。Optionsは持たない。
func NewFreeTextQuestion(itemID uuid.UUID, prompt, correct string) QuizQuestion {
	return QuizQuestion{
		Type:          QuestionPinyin,
		ItemID:        itemID,
		Prompt:        prompt,
		CorrectAnswer: correct,
	}
}

// SessionResult は完了した1セッションの採点結果
type SessionResult struct {
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Questions []QuizQuestion `json:"questions"` // 回答順
}
