// internal/quiz/generator.go
package quiz

import (
	"math/rand"
	"time"

	"hanzi_keep/internal/model"
)

// PoolMode は出題プールの組み立て方
type PoolMode string

const (
	PoolOnce       PoolMode = "once"       // 各単語は最大1回出題
	PoolRepeatable PoolMode = "repeatable" // 制限時間付きセッション用に単語を繰り返す
)

const (
	// 標準セッションの既定出題数
	defaultQuestionCount = 10
	// repeatableモードでの単語プールの複製回数
	repeatableMultiplier = 3
	// 選択形式1問あたりの誤答選択肢数
	distractorCount = 3
)

// GeneratorOptions は出題生成のオプション
type GeneratorOptions struct {
	// 出題形式のフィルタ。空または有効な形式を含まない場合は全形式を使う
	Types []model.QuestionType
	// 出題数の上限。0のときはonceモードで min(10, プールサイズ)、repeatableモードで無制限
	Count int
	// プールの組み立て方。未指定はPoolOnce
	Pool PoolMode
}

// Generator は単語集合から採点可能な問題列を生成します
type Generator struct {
	rng *rand.Rand
}

// NewGenerator は問題生成器を生成します。rng に nil を渡すと時刻シードになる。
// テストでは固定シードの rand.New を注入して再現可能にする。
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate は問題列を生成します。items が空の場合は空スライスを返す（エラーにしない）。
// 最少単語数のゲーティングは呼び出し側の方針。
func (g *Generator) Generate(items []model.VocabItem, opts GeneratorOptions) []model.QuizQuestion {
	if len(items) == 0 {
		return []model.QuizQuestion{}
	}

	types := activeTypes(opts.Types)

	// 出題プールを組み立ててシャッフル
	pool := make([]model.VocabItem, 0, len(items)*repeatableMultiplier)
	if opts.Pool == PoolRepeatable {
		for i := 0; i < repeatableMultiplier; i++ {
			pool = append(pool, items...)
		}
	} else {
		pool = append(pool, items...)
	}
	g.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	count := opts.Count
	if count <= 0 {
		if opts.Pool == PoolRepeatable {
			count = len(pool)
		} else {
			count = defaultQuestionCount
		}
	}
	if count > len(pool) {
		count = len(pool)
	}
	pool = pool[:count]

	questions := make([]model.QuizQuestion, 0, len(pool))
	for i, item := range pool {
		// 位置インデックスで形式を巡回させ、出題形式の偏りを防ぐ
		qType := types[i%len(types)]
		questions = append(questions, g.buildQuestion(item, qType, items))
	}
	return questions
}

// activeTypes は要求された形式と全形式の積集合を返します。空になる場合は全形式。
func activeTypes(requested []model.QuestionType) []model.QuestionType {
	if len(requested) == 0 {
		return model.AllQuestionTypes
	}
	valid := make(map[model.QuestionType]bool, len(model.AllQuestionTypes))
	for _, t := range model.AllQuestionTypes {
		valid[t] = true
	}
	var active []model.QuestionType
	seen := make(map[model.QuestionType]bool)
	for _, t := range requested {
		if valid[t] && !seen[t] {
			active = append(active, t)
			seen[t] = true
		}
	}
	if len(active) == 0 {
		return model.AllQuestionTypes
	}
	return active
}

func (g *Generator) buildQuestion(item model.VocabItem, qType model.QuestionType, all []model.VocabItem) model.QuizQuestion {
	switch qType {
	case model.QuestionMeaning:
		// 漢字を提示して意味を選ばせる
		options := g.buildOptions(item, all, qType, item.Meaning)
		return model.NewChoiceQuestion(qType, item.ItemID, item.Hanzi, item.Meaning, options)
	case model.QuestionHanzi:
		// 意味を提示して漢字を選ばせる
		options := g.buildOptions(item, all, qType, item.Hanzi)
		return model.NewChoiceQuestion(qType, item.ItemID, item.Meaning, item.Hanzi, options)
	default:
		// 漢字を提示して拼音を入力させる（自由入力、選択肢なし）
		return model.NewFreeTextQuestion(item.ItemID, item.Hanzi, item.Pinyin)
	}
}

// buildOptions は誤答選択肢3個＋正解1個をシャッフルして返します。
// 候補が3個に満たないセットではあるだけ使う（2〜3択になってもエラーにしない）。
func (g *Generator) buildOptions(item model.VocabItem, all []model.VocabItem, qType model.QuestionType, correct string) []string {
	others := make([]model.VocabItem, 0, len(all))
	for _, o := range all {
		if o.ItemID != item.ItemID {
			others = append(others, o)
		}
	}
	g.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	options := []string{correct}
	seen := map[string]bool{correct: true}
	for _, o := range others {
		if len(options) > distractorCount {
			break
		}
		value := o.Meaning
		if qType == model.QuestionHanzi {
			value = o.Hanzi
		}
		// 選択肢の値は重複させない
		if seen[value] {
			continue
		}
		seen[value] = true
		options = append(options, value)
	}
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
