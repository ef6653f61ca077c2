// internal/session/orchestrator_test.go
package session

import (
	"testing"

	"hanzi_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeClock, *[]ModeTransition) {
	t.Helper()
	clock := &fakeClock{}
	var transitions []ModeTransition
	o := NewOrchestrator(OrchestratorConfig{
		NewTimer:     clock.NewTimer,
		OnTransition: func(tr ModeTransition) { transitions = append(transitions, tr) },
	})
	return o, clock, &transitions
}

func TestOrchestrator_SequencesAllModes(t *testing.T) {
	o, clock, transitions := newTestOrchestrator(t)

	for i, want := range ModeOrder {
		mode, err := o.CurrentMode()
		require.NoError(t, err)
		assert.Equal(t, want, mode)

		o.CompleteCurrentMode()
		// クールダウンタイマーの発火で自動的に次へ進む
		require.Len(t, clock.timers, i+1)
		clock.timers[i].Fire()
	}

	assert.True(t, o.AllComplete())
	_, err := o.CurrentMode()
	assert.ErrorIs(t, err, model.ErrInvalidState)

	require.Len(t, *transitions, len(ModeOrder))
	last := (*transitions)[len(*transitions)-1]
	assert.Equal(t, ModeQuiz, last.From)
	assert.True(t, last.AllComplete)
	assert.ElementsMatch(t, ModeOrder, o.CompletedModes())
}

// 同一モードからの重複完了通知は冪等に無視される
func TestOrchestrator_DuplicateCompletionIgnored(t *testing.T) {
	o, clock, _ := newTestOrchestrator(t)

	o.CompleteCurrentMode()
	o.CompleteCurrentMode()
	o.CompleteCurrentMode()

	// タイマーは1本だけ張られる
	assert.Len(t, clock.timers, 1)
	clock.timers[0].Fire()

	mode, err := o.CurrentMode()
	require.NoError(t, err)
	assert.Equal(t, ModeMatching, mode, "1段だけ進む")
}

func TestOrchestrator_ManualAdvance(t *testing.T) {
	o, clock, _ := newTestOrchestrator(t)

	// 完了前の手動送りは無効
	assert.ErrorIs(t, o.ManualAdvance(), model.ErrInvalidState)

	o.CompleteCurrentMode()
	require.NoError(t, o.ManualAdvance())

	mode, err := o.CurrentMode()
	require.NoError(t, err)
	assert.Equal(t, ModeMatching, mode)

	// クールダウンタイマーは停止済みで、後から発火しても二重に進まない
	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)
	clock.timers[0].Fire()
	mode, err = o.CurrentMode()
	require.NoError(t, err)
	assert.Equal(t, ModeMatching, mode)

	// 進んだ直後の再手動送りは無効
	assert.ErrorIs(t, o.ManualAdvance(), model.ErrInvalidState)
}

func TestOrchestrator_Restart(t *testing.T) {
	o, clock, _ := newTestOrchestrator(t)

	o.CompleteCurrentMode()
	clock.timers[0].Fire()
	o.CompleteCurrentMode()

	o.Restart()

	mode, err := o.CurrentMode()
	require.NoError(t, err)
	assert.Equal(t, ModeFlashcard, mode)
	assert.False(t, o.AllComplete())
	assert.Empty(t, o.CompletedModes())

	// リスタート前のクールダウンタイマーは無効化されている
	assert.True(t, clock.timers[1].stopped)
	clock.timers[1].Fire()
	mode, err = o.CurrentMode()
	require.NoError(t, err)
	assert.Equal(t, ModeFlashcard, mode)
}

// モード位置は進むかリセットのみで、1段戻ることはない
func TestOrchestrator_IndexNeverDecreases(t *testing.T) {
	o, clock, transitions := newTestOrchestrator(t)

	o.CompleteCurrentMode()
	clock.timers[0].Fire()
	o.CompleteCurrentMode()
	require.NoError(t, o.ManualAdvance())

	indexOf := func(m Mode) int {
		for i, mode := range ModeOrder {
			if mode == m {
				return i
			}
		}
		return -1
	}
	prev := -1
	for _, tr := range *transitions {
		from := indexOf(tr.From)
		assert.GreaterOrEqual(t, from, prev)
		prev = from
	}
}
