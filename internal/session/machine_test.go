// internal/session/machine_test.go
package session

import (
	"testing"
	"time"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/quiz"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer は発火を手動制御するタイマー
type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := f.stopped
	f.stopped = true
	return !was
}

// Fire は満了コールバックを手動で呼びます（Stop済みでも呼べる。
// 実タイマーの発火と停止が競合するケースの再現用）
func (f *fakeTimer) Fire() {
	f.fn()
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) NewTimer(d time.Duration, fn func()) Timer {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func twoQuestions() []model.QuizQuestion {
	return []model.QuizQuestion{
		model.NewChoiceQuestion(model.QuestionMeaning, uuid.New(), "你好", "hello", []string{"hello", "goodbye"}),
		model.NewFreeTextQuestion(uuid.New(), "再见", "zài jiàn"),
	}
}

func TestMachine_FullQuizFlow(t *testing.T) {
	var results []model.SessionResult
	m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{}, func(r model.SessionResult) {
		results = append(results, r)
	})

	require.NoError(t, m.Start(twoQuestions()))
	assert.Equal(t, StateInProgress, m.State())

	q, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, "你好", q.Prompt)

	correct, err := m.Submit("hello")
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, StateAdvancing, m.State())

	require.NoError(t, m.Advance())
	assert.Equal(t, StateInProgress, m.State())

	correct, err = m.Submit("wrong answer")
	require.NoError(t, err)
	assert.False(t, correct)

	require.NoError(t, m.Advance())
	assert.Equal(t, StateComplete, m.State())

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Score)
	assert.Equal(t, 2, results[0].Total)
	require.Len(t, results[0].Questions, 2)
	assert.Equal(t, "hello", results[0].Questions[0].UserAnswer)
	assert.True(t, results[0].Questions[0].Answered)
}

func TestMachine_InvalidTransitions(t *testing.T) {
	m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{}, nil)

	// Idleでの操作
	_, err := m.Submit("x")
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.ErrorIs(t, m.Advance(), model.ErrInvalidState)

	require.NoError(t, m.Start(twoQuestions()))

	// InProgress中のAdvance、二重Start
	assert.ErrorIs(t, m.Advance(), model.ErrInvalidState)
	assert.ErrorIs(t, m.Start(twoQuestions()), model.ErrInvalidState)

	// Advancing中のSubmit
	_, err = m.Submit("hello")
	require.NoError(t, err)
	_, err = m.Submit("hello")
	assert.ErrorIs(t, err, model.ErrInvalidState)

	// 完了後は全操作が拒否される（状態は壊れない）
	require.NoError(t, m.Advance())
	_, err = m.Submit("x")
	require.NoError(t, err) // 2問目
	require.NoError(t, m.Advance())
	assert.Equal(t, StateComplete, m.State())
	_, err = m.Submit("x")
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.ErrorIs(t, m.Advance(), model.ErrInvalidState)
	assert.ErrorIs(t, m.Cancel(), model.ErrInvalidState)
}

func TestMachine_Cancel(t *testing.T) {
	calls := 0
	clock := &fakeClock{}
	m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{
		TimeLimit: time.Minute,
		NewTimer:  clock.NewTimer,
	}, func(model.SessionResult) { calls++ })

	require.NoError(t, m.Start(twoQuestions()))
	_, err := m.Submit("hello")
	require.NoError(t, err)

	require.NoError(t, m.Cancel())
	assert.Equal(t, StateCancelled, m.State())

	// キャンセルでは結果が生成されず、タイマーも止まる
	assert.Equal(t, 0, calls)
	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)

	// 停止済みタイマーが万一発火しても何も起きない
	clock.timers[0].Fire()
	assert.Equal(t, 0, calls)
	assert.Equal(t, StateCancelled, m.State())
}

func TestMachine_TimedExpiry(t *testing.T) {
	var results []model.SessionResult
	clock := &fakeClock{}
	m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{
		TimeLimit: time.Minute,
		NewTimer:  clock.NewTimer,
	}, func(r model.SessionResult) { results = append(results, r) })

	require.NoError(t, m.Start(twoQuestions()))
	_, err := m.Submit("hello")
	require.NoError(t, err)
	require.NoError(t, m.Advance())

	// 2問目の回答前に時間切れ
	require.Len(t, clock.timers, 1)
	clock.timers[0].Fire()

	assert.Equal(t, StateExpired, m.State())
	require.Len(t, results, 1)
	// 未回答の残りは切り捨て（不正解扱いにしない）
	assert.Equal(t, 1, results[0].Total)
	assert.Equal(t, 1, results[0].Score)

	// 時間切れ後の操作は拒否される
	_, err = m.Submit("late")
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

// タイマー満了と問題消化が競合しても完了コールバックは1回だけ
func TestMachine_AtMostOnceCompletion(t *testing.T) {
	t.Run("自然完了の後にタイマーが発火", func(t *testing.T) {
		calls := 0
		clock := &fakeClock{}
		m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{
			TimeLimit: time.Minute,
			NewTimer:  clock.NewTimer,
		}, func(model.SessionResult) { calls++ })

		require.NoError(t, m.Start(twoQuestions()))
		for i := 0; i < 2; i++ {
			_, err := m.Submit("hello")
			require.NoError(t, err)
			require.NoError(t, m.Advance())
		}
		assert.Equal(t, StateComplete, m.State())
		assert.Equal(t, 1, calls)
		assert.True(t, clock.timers[0].stopped, "完了時にタイマーを停止する")

		// Stopと実発火の競合を模倣
		clock.timers[0].Fire()
		assert.Equal(t, 1, calls)
		assert.Equal(t, StateComplete, m.State())
	})

	t.Run("タイマー発火の後に自然完了を試行", func(t *testing.T) {
		calls := 0
		clock := &fakeClock{}
		m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{
			TimeLimit: time.Minute,
			NewTimer:  clock.NewTimer,
		}, func(model.SessionResult) { calls++ })

		require.NoError(t, m.Start(twoQuestions()))
		_, err := m.Submit("hello")
		require.NoError(t, err)

		clock.timers[0].Fire()
		assert.Equal(t, 1, calls)

		// 発火後のAdvanceは拒否され、二重計上されない
		assert.ErrorIs(t, m.Advance(), model.ErrInvalidState)
		assert.Equal(t, 1, calls)
		assert.Equal(t, StateExpired, m.State())
	})
}

// 採点形式ごとの完了時再採点がSubmit時の判定と一致すること
func TestMachine_ScoreRecomputation(t *testing.T) {
	var result model.SessionResult
	m := NewMachine(quiz.NewEvaluator(nil), MachineConfig{}, func(r model.SessionResult) {
		result = r
	})

	questions := []model.QuizQuestion{
		model.NewFreeTextQuestion(uuid.New(), "你好", "nǐ hǎo"),
		model.NewFreeTextQuestion(uuid.New(), "女", "nǚ"),
	}
	require.NoError(t, m.Start(questions))

	_, err := m.Submit("ni3hao3") // 数字声調入力 → 正解
	require.NoError(t, err)
	require.NoError(t, m.Advance())
	_, err = m.Submit("nv4") // 声調違い → 不正解
	require.NoError(t, err)
	require.NoError(t, m.Advance())

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.Total)
}
