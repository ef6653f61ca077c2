// internal/quiz/evaluator.go
package quiz

import (
	"strings"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/pinyin"

	"github.com/google/uuid"
)

// AnswerEvaluated は1回の採点結果イベント。効果音などのUIフィードバックは
// このイベントの購読側が担当し、採点ロジック自体は副作用を持たない。
type AnswerEvaluated struct {
	ItemID  uuid.UUID
	Type    model.QuestionType
	Correct bool
}

// Evaluator は回答の正誤を判定します
type Evaluator struct {
	notify func(AnswerEvaluated) // nil可
}

// NewEvaluator は採点器を生成します。notify に nil 以外を渡すと採点ごとに通知される。
func NewEvaluator(notify func(AnswerEvaluated)) *Evaluator {
	return &Evaluator{notify: notify}
}

// IsCorrect は出題形式に応じて回答を判定します。
//   - hanzi:   完全一致（選択肢の提示値がそのまま返るため）
//   - meaning: 大文字小文字を無視した一致
//   - pinyin:  前後の空白を除去し、数字を含む場合は声調記号へ正規化してから
//     大文字小文字を無視して比較。音節区切りの空白差は吸収する。
//
// 空回答は常に不正解。どの入力でもpanicしない。
func (e *Evaluator) IsCorrect(q model.QuizQuestion, rawAnswer string) bool {
	correct := Evaluate(q, rawAnswer)
	if e.notify != nil {
		e.notify(AnswerEvaluated{ItemID: q.ItemID, Type: q.Type, Correct: correct})
	}
	return correct
}

// Evaluate は通知なしの採点。完了時の再採点など、UIフィードバックを
// 伴わせたくない経路で使う。
func Evaluate(q model.QuizQuestion, rawAnswer string) bool {
	answer := strings.TrimSpace(rawAnswer)
	if answer == "" {
		return false
	}

	switch q.Type {
	case model.QuestionHanzi:
		return answer == q.CorrectAnswer
	case model.QuestionMeaning:
		return strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer))
	case model.QuestionPinyin:
		if strings.ContainsAny(answer, "12345") {
			answer = pinyin.Normalize(answer)
		}
		return foldPinyin(answer) == foldPinyin(q.CorrectAnswer)
	default:
		return false
	}
}

// foldPinyin は拼音比較用の正規形（小文字・空白なし）を返します。
// "ni3hao3" と "nǐ hǎo" のような区切り差を同一視する。
func foldPinyin(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
