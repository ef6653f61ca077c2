// internal/session/machine.go
package session

import (
	"sync"
	"time"

	"hanzi_keep/internal/model"
	"hanzi_keep/internal/quiz"
)

// State はセッションの状態
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateAdvancing  State = "advancing" // 回答直後、次の問題へ進む前
	StateComplete   State = "complete"
	StateExpired    State = "expired" // 制限時間切れ（時間制モードのみ）
	StateCancelled  State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateComplete || s == StateExpired || s == StateCancelled
}

// MachineConfig はセッションの動作設定
type MachineConfig struct {
	// 0より大きい場合は時間制モード。Startで計時を開始する。
	TimeLimit time.Duration
	// nilの場合は RealTimer
	NewTimer TimerFactory
}

// Machine は1回の練習セッションを駆動する状態機械です。
// 遷移: Idle → InProgress → (Submit: Advancing → Advance: InProgress)* → Complete。
// 時間制モードでは InProgress/Advancing から Expired へも遷移する。
//
// 完了コールバックはセッションインスタンスごとに最多1回だけ呼ばれる。
// タイマー満了と問題消化が競合しても二重呼び出しにならないことを保証する。
type Machine struct {
	mu         sync.Mutex
	state      State
	questions  []model.QuizQuestion
	index      int
	answered   []model.QuizQuestion
	evaluator  *quiz.Evaluator
	onComplete func(model.SessionResult)
	cfg        MachineConfig
	timer      Timer
	finished   bool // 完了コールバックのワンショットガード
}

// NewMachine はセッション状態機械を生成します。onComplete は Complete / Expired
// 到達時に結果とともに呼ばれる（Cancelでは呼ばれない）。
func NewMachine(evaluator *quiz.Evaluator, cfg MachineConfig, onComplete func(model.SessionResult)) *Machine {
	if cfg.NewTimer == nil {
		cfg.NewTimer = RealTimer
	}
	return &Machine{
		state:      StateIdle,
		evaluator:  evaluator,
		onComplete: onComplete,
		cfg:        cfg,
	}
}

// Start は問題列を受け取りセッションを開始します。Idle以外からの呼び出しは
// ErrInvalidState。時間制モードならここでカウントダウンが始まる。
func (m *Machine) Start(questions []model.QuizQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return model.ErrInvalidState
	}
	m.questions = questions
	m.index = 0
	m.answered = make([]model.QuizQuestion, 0, len(questions))
	m.state = StateInProgress

	if m.cfg.TimeLimit > 0 {
		m.timer = m.cfg.NewTimer(m.cfg.TimeLimit, m.expire)
	}
	return nil
}

// Submit は現在の問題への回答を記録して採点します。InProgress以外、または
// 問題が残っていない場合は ErrInvalidState。
func (m *Machine) Submit(answer string) (bool, error) {
	m.mu.Lock()

	if m.state != StateInProgress || m.index >= len(m.questions) {
		m.mu.Unlock()
		return false, model.ErrInvalidState
	}

	q := &m.questions[m.index]
	q.UserAnswer = answer
	q.Answered = true
	m.answered = append(m.answered, *q)
	m.state = StateAdvancing
	question := *q
	m.mu.Unlock()

	// 採点は状態に影響しないためロック外で行う（通知購読側の再入も安全）
	return m.evaluator.IsCorrect(question, answer), nil
}

// Advance は次の問題へ進みます。最後の問題を消化済みなら Complete へ遷移し、
// 結果を計算して完了コールバックを呼ぶ。
func (m *Machine) Advance() error {
	m.mu.Lock()

	if m.state != StateAdvancing {
		m.mu.Unlock()
		return model.ErrInvalidState
	}
	m.index++
	if m.index < len(m.questions) {
		m.state = StateInProgress
		m.mu.Unlock()
		return nil
	}

	m.state = StateComplete
	m.finishLocked()
	return nil
}

// Cancel はセッションを破棄します。結果は生成されず、永続化も行われない。
// 終端状態からの呼び出しは ErrInvalidState。
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Terminal() {
		return model.ErrInvalidState
	}
	m.stopTimerLocked()
	m.state = StateCancelled
	return nil
}

// expire はタイマー満了時に呼ばれます。既に終端していれば何もしない。
func (m *Machine) expire() {
	m.mu.Lock()

	if m.state.Terminal() || m.state == StateIdle {
		m.mu.Unlock()
		return
	}
	// 未回答の残りは採点対象外として切り捨てる
	m.state = StateExpired
	m.finishLocked()
}

// State は現在の状態を返します
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current は現在の問題を返します
func (m *Machine) Current() (model.QuizQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInProgress || m.index >= len(m.questions) {
		return model.QuizQuestion{}, model.ErrInvalidState
	}
	return m.questions[m.index], nil
}

// finishLocked は結果を計算し、ワンショットガードの下で完了コールバックを
// 呼びます。ロックを保持した状態で呼ぶこと。内部でロックを解放する。
func (m *Machine) finishLocked() {
	m.stopTimerLocked()

	if m.finished {
		m.mu.Unlock()
		return
	}
	m.finished = true

	// スコアは完了時点で回答済みの問題を再採点して確定する
	score := 0
	for _, q := range m.answered {
		if quiz.Evaluate(q, q.UserAnswer) {
			score++
		}
	}
	result := model.SessionResult{
		Score:     score,
		Total:     len(m.answered),
		Questions: m.answered,
	}
	cb := m.onComplete
	m.mu.Unlock()

	if cb != nil {
		cb(result)
	}
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
