// internal/session/clock.go
package session

import "time"

// Timer は停止可能なワンショットタイマー。*time.Timer が満たす。
type Timer interface {
	Stop() bool
}

// TimerFactory はタイマー生成の注入シーム。テストでは発火を手動制御する
// フェイクを差し込み、本番では RealTimer を使う。
type TimerFactory func(d time.Duration, fn func()) Timer

// RealTimer は time.AfterFunc によるタイマー生成
func RealTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
