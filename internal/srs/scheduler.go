// internal/srs/scheduler.go
package srs

import (
	"time"

	"hanzi_keep/internal/model"
)

// MaxLevel は習熟度レベルの上限
const MaxLevel = 6

// LevelStrategy は復習結果から次のレベルと次回復習日を計算する注入シーム。
// クライアント側の楽観更新とサーバ側の正式更新で異なる実装を差し込めるよう、
// スケジューラ自身は間隔計算を所有しない。
type LevelStrategy interface {
	NextLevel(currentLevel int, correct bool, now time.Time) (int, time.Time)
}

// IntervalLadder は既定のLevelStrategy。不正解でレベル0へ戻して翌日復習、
// 正解でレベルを1段上げて固定間隔表から次回復習日を引く。
type IntervalLadder struct{}

// レベル到達時の復習間隔（日）。index = 新レベル - 1。
// 最高レベル維持時はさらに長い間隔を使う。
var intervalDays = []int{1, 3, 7, 14, 30, 90}

const maxLevelHoldDays = 180

func (IntervalLadder) NextLevel(currentLevel int, correct bool, now time.Time) (int, time.Time) {
	if !correct {
		return 0, now.AddDate(0, 0, 1)
	}
	if currentLevel >= MaxLevel {
		// 最高レベル維持
		return MaxLevel, now.AddDate(0, 0, maxLevelHoldDays)
	}
	newLevel := currentLevel + 1
	return newLevel, now.AddDate(0, 0, intervalDays[newLevel-1])
}

// Scheduler は単語ごとの習熟状態への問い合わせと復習結果の反映を担当します
type Scheduler struct {
	now      func() time.Time
	strategy LevelStrategy
}

// NewScheduler はスケジューラを生成します。now に nil で time.Now、
// strategy に nil で IntervalLadder を使う。
func NewScheduler(now func() time.Time, strategy LevelStrategy) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if strategy == nil {
		strategy = IntervalLadder{}
	}
	return &Scheduler{now: now, strategy: strategy}
}

// DueItems は asOf 時点で復習期限が到来した単語の件数をセットごとに集計します。
// 期限比較は両者を日付（深夜0時）に切り捨ててから行う。時刻部分は無視する。
func (s *Scheduler) DueItems(sets []model.VocabSet, asOf time.Time) []model.DueSetSummary {
	asOfDay := truncateToDay(asOf)

	summaries := make([]model.DueSetSummary, 0, len(sets))
	for _, set := range sets {
		count := 0
		for _, item := range set.Items {
			if item.NextReviewDate == nil {
				continue // 未復習の単語は期限を持たない
			}
			if !truncateToDay(*item.NextReviewDate).After(asOfDay) {
				count++
			}
		}
		if count > 0 {
			summaries = append(summaries, model.DueSetSummary{
				SetID:    set.SetID,
				SetTitle: set.Title,
				DueCount: count,
			})
		}
	}
	return summaries
}

// Bucketize は全単語を習熟度レベルで分類して集計します
func (s *Scheduler) Bucketize(sets []model.VocabSet) model.MasteryDistribution {
	var dist model.MasteryDistribution
	for _, set := range sets {
		for _, item := range set.Items {
			switch BucketFor(item.SrsLevel) {
			case model.BucketNew:
				dist.New++
			case model.BucketLearning:
				dist.Learning++
			case model.BucketKnown:
				dist.Known++
			case model.BucketMastered:
				dist.Mastered++
			}
			dist.Total++
		}
	}
	return dist
}

// BucketFor はレベル値を習熟度バケットへ分類します
func BucketFor(level int) model.MasteryBucket {
	switch {
	case level <= 0:
		return model.BucketNew
	case level <= 2:
		return model.BucketLearning
	case level <= 5:
		return model.BucketKnown
	default:
		return model.BucketMastered
	}
}

// MarkReviewOutcome は復習結果のフラグだけを反映した新しい単語を返します（純粋関数）。
// レベルと次回復習日には触れない。UIの楽観更新向けの最小シグナル。
func (s *Scheduler) MarkReviewOutcome(item model.VocabItem, correct bool) model.VocabItem {
	item.NeedsReview = !correct
	return item
}

// ApplyReview は注入されたLevelStrategyで次のレベルと復習日を計算し、
// 反映済みの新しい単語を返します（純粋関数）。永続化は呼び出し側が行う。
func (s *Scheduler) ApplyReview(item model.VocabItem, correct bool) model.VocabItem {
	item = s.MarkReviewOutcome(item, correct)
	now := s.now()
	level, next := s.strategy.NextLevel(item.SrsLevel, correct, now)
	item.SrsLevel = level
	item.NextReviewDate = &next
	return item
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
