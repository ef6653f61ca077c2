// internal/session/orchestrator.go
package session

import (
	"sync"
	"time"

	"hanzi_keep/internal/model"
)

// Mode はミックスセッション内の学習モード
type Mode string

const (
	ModeFlashcard Mode = "flashcard"
	ModeMatching  Mode = "matching"
	ModeWriting   Mode = "writing"
	ModeLightning Mode = "lightning"
	ModeQuiz      Mode = "quiz"
)

// ModeOrder はミックスセッションの固定実行順
var ModeOrder = []Mode{ModeFlashcard, ModeMatching, ModeWriting, ModeLightning, ModeQuiz}

// 次のモードへ自動的に進むまでの待機時間
const DefaultCooldown = 2000 * time.Millisecond

// ModeTransition はモード遷移通知
type ModeTransition struct {
	From        Mode
	To          Mode
	AllComplete bool
}

// OrchestratorConfig はオーケストレータの動作設定
type OrchestratorConfig struct {
	// 0以下の場合は DefaultCooldown
	Cooldown time.Duration
	// nilの場合は RealTimer
	NewTimer TimerFactory
	// モード遷移ごとに呼ばれる（nil可）
	OnTransition func(ModeTransition)
}

// Orchestrator は複数の学習モードを1つの学習活動として順に実行します。
// あるモードの完了通知を受けると、クールダウン後に次のモードへ自動的に進む。
// 不変条件: currentModeIndex は増加するか0へのリセットのみ。1つ戻ることはない。
type Orchestrator struct {
	mu            sync.Mutex
	index         int
	completed     map[Mode]bool
	justCompleted bool
	allComplete   bool
	cfg           OrchestratorConfig
	timer         Timer
}

// NewOrchestrator はミックスセッションのオーケストレータを生成します
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.NewTimer == nil {
		cfg.NewTimer = RealTimer
	}
	return &Orchestrator{
		completed: make(map[Mode]bool),
		cfg:       cfg,
	}
}

// CurrentMode は現在のモードを返します。全モード完了後は ErrInvalidState。
func (o *Orchestrator) CurrentMode() (Mode, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.allComplete {
		return "", model.ErrInvalidState
	}
	return ModeOrder[o.index], nil
}

// CompleteCurrentMode は現在のモードの完了通知を受け付けます。
// 同一モードからの重複通知は冪等に無視する。クールダウン後に自動で次へ進む。
func (o *Orchestrator) CompleteCurrentMode() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.allComplete || o.justCompleted {
		return
	}
	o.completed[ModeOrder[o.index]] = true
	o.justCompleted = true
	o.timer = o.cfg.NewTimer(o.cfg.Cooldown, o.autoAdvance)
}

// ManualAdvance はクールダウンを待たずに次のモードへ進みます。
// 直前のモードが完了した状態（justCompleted）でのみ有効。
func (o *Orchestrator) ManualAdvance() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.justCompleted || o.allComplete {
		return model.ErrInvalidState
	}
	o.stopTimerLocked()
	o.advanceLocked()
	return nil
}

// Restart は全状態を初期値へ戻します
func (o *Orchestrator) Restart() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopTimerLocked()
	o.index = 0
	o.completed = make(map[Mode]bool)
	o.justCompleted = false
	o.allComplete = false
}

// JustCompleted は現在のモードが完了通知を受けて待機中かどうかを返します
func (o *Orchestrator) JustCompleted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.justCompleted
}

// AllComplete は全モードが完了したかどうかを返します
func (o *Orchestrator) AllComplete() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.allComplete
}

// CompletedModes は完了済みモードの集合を返します
func (o *Orchestrator) CompletedModes() []Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	modes := make([]Mode, 0, len(o.completed))
	for _, m := range ModeOrder {
		if o.completed[m] {
			modes = append(modes, m)
		}
	}
	return modes
}

func (o *Orchestrator) autoAdvance() {
	o.mu.Lock()
	defer o.mu.Unlock()

	// ManualAdvance や Restart と競合した場合は何もしない
	if !o.justCompleted || o.allComplete {
		return
	}
	o.advanceLocked()
}

func (o *Orchestrator) advanceLocked() {
	from := ModeOrder[o.index]
	o.justCompleted = false

	transition := ModeTransition{From: from}
	if o.index+1 < len(ModeOrder) {
		o.index++
		transition.To = ModeOrder[o.index]
	} else {
		o.allComplete = true
		transition.AllComplete = true
	}

	if o.cfg.OnTransition != nil {
		// 通知はコールバック側の責務が軽い前提でロック中に行う
		o.cfg.OnTransition(transition)
	}
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
