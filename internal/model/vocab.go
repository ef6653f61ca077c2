// internal/model/vocab.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VocabSet は単語帳（VocabItemの順序付きコレクション）を表します
type VocabSet struct {
	SetID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"set_id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty"` // "beginner" | "intermediate" | "advanced"
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用

	// 関連 (Preload用)。Positionで並び順を保持する
	Items []VocabItem `gorm:"foreignKey:SetID;references:SetID" json:"items,omitempty"`
}

func (VocabSet) TableName() string {
	return "vocab_sets"
}

// VocabItem は学習単位（漢字・拼音・意味の組）を表します
type VocabItem struct {
	ItemID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"item_id"`
	SetID           uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	Hanzi           string    `gorm:"not null" json:"hanzi"`
	Pinyin          string    `gorm:"not null" json:"pinyin"` // 声調記号付きの正規形
	Meaning         string    `gorm:"not null" json:"meaning"`
	ExampleSentence string    `json:"example_sentence,omitempty"`
	SrsLevel        int       `gorm:"not null;default:0" json:"srs_level"`
	NextReviewDate  *time.Time `json:"next_review_date,omitempty"` // nil = 未復習
	NeedsReview     bool       `gorm:"not null;default:false" json:"needs_review"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (VocabItem) TableName() string {
	return "vocab_items"
}

// 単語帳作成リクエストDTO
type PostSetRequest struct {
	Title       string            `json:"title" validate:"required,min=1"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Items       []PostItemRequest `json:"items" validate:"omitempty,dive"`
}

// 単語帳更新（部分）リクエストDTO
type PatchSetRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// 単語作成リクエストDTO
type PostItemRequest struct {
	Hanzi           string `json:"hanzi" validate:"required"`
	Pinyin          string `json:"pinyin" validate:"required"` // 数字声調でも可（保存時に正規化）
	Meaning         string `json:"meaning" validate:"required"`
	ExampleSentence string `json:"example_sentence"`
}

// 単語更新（部分）リクエストDTO
type PatchItemRequest struct {
	Hanzi           *string `json:"hanzi,omitempty" validate:"omitempty,min=1"`
	Pinyin          *string `json:"pinyin,omitempty" validate:"omitempty,min=1"`
	Meaning         *string `json:"meaning,omitempty" validate:"omitempty,min=1"`
	ExampleSentence *string `json:"example_sentence,omitempty"`
	NeedsReview     *bool   `json:"needs_review,omitempty"`
}
