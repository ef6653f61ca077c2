// internal/model/progress.go
package model

import (
	"github.com/google/uuid"
)

// MasteryBucket は習熟度レベルの分類（導出値であり保存しない）
type MasteryBucket string

const (
	BucketNew      MasteryBucket = "new"      // level 0
	BucketLearning MasteryBucket = "learning" // level 1-2
	BucketKnown    MasteryBucket = "known"    // level 3-5
	BucketMastered MasteryBucket = "mastered" // level 6+
)

// MasteryDistribution は習熟度の集計レスポンスDTO
type MasteryDistribution struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Known    int `json:"known"`
	Mastered int `json:"mastered"`
	Total    int `json:"total"`
}

// DueSetSummary はセットごとの復習期限到来件数のレスポンスDTO
type DueSetSummary struct {
	SetID    uuid.UUID `json:"set_id"`
	SetTitle string    `json:"set_title"`
	DueCount int       `json:"due_count"`
}

// 復習結果送信リクエストDTO
type SubmitReviewRequest struct {
	IsCorrect *bool `json:"is_correct" validate:"required"`
}
