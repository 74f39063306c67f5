package messaging

import "time"

// Scheduler runs fn after d. The API uses it to deliver the canned reply.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// ImmediateScheduler runs fn synchronously; used by tests and the TUI.
type ImmediateScheduler struct{}

func (ImmediateScheduler) AfterFunc(_ time.Duration, fn func()) { fn() }
