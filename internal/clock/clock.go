// Package clock lets timer-driven code run against wall time in
// production and a hand-advanced clock in tests.
package clock

import "time"

// Clock is the subset of the time package used by the tracker and the
// widget janitor.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. The returned Timer cancels
	// the pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancelable scheduled call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the call from firing. It reports false when the call
// already fired or was stopped before.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stopFunc: timer.Stop}
}
