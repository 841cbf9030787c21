package clock

import (
	"sync"
	"time"
)

// FakeClock only moves when Advance is called. Callbacks run
// synchronously inside Advance, in deadline order, so they must not call
// Advance themselves.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
	nextSeq int
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	seq      int
	callback func()
	stopped  bool
	fired    bool
}

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to fire once the clock passes now+d. A
// non-positive d calls f before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mu.Lock()
	ft := &fakeTimer{deadline: c.current.Add(d), seq: c.nextSeq, callback: f}
	c.nextSeq++
	c.pending = append(c.pending, ft)
	c.changed.Broadcast()
	c.mu.Unlock()

	return &Timer{stopFunc: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if ft.stopped || ft.fired {
			return false
		}
		ft.stopped = true
		c.changed.Broadcast()
		return true
	}}
}

// Advance moves the clock forward by d, firing due callbacks one at a
// time in deadline order. While a callback runs, Now reports that
// callback's deadline. Callbacks registered during Advance fire too if
// their deadline falls within the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		ft := c.popDue(target)
		if ft == nil {
			break
		}
		ft.callback()
	}

	c.mu.Lock()
	if target.After(c.current) {
		c.current = target
	}
	c.mu.Unlock()
}

// popDue removes and returns the earliest timer due by target, stepping
// the clock to its deadline. Ties go to the timer registered first.
func (c *FakeClock) popDue(target time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	remaining := c.pending[:0]
	for _, ft := range c.pending {
		if ft.stopped {
			continue
		}
		remaining = append(remaining, ft)
	}
	c.pending = remaining

	for i, ft := range c.pending {
		if ft.deadline.After(target) {
			continue
		}
		if idx < 0 || earlier(ft, c.pending[idx]) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	ft := c.pending[idx]
	c.pending = append(c.pending[:idx], c.pending[idx+1:]...)
	ft.fired = true
	if ft.deadline.After(c.current) {
		c.current = ft.deadline
	}
	return ft
}

func earlier(a, b *fakeTimer) bool {
	if a.deadline.Equal(b.deadline) {
		return a.seq < b.seq
	}
	return a.deadline.Before(b.deadline)
}

// Pending reports how many callbacks are still scheduled.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

// WaitForTimers blocks until at least n callbacks are scheduled.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

func (c *FakeClock) pendingLocked() int {
	n := 0
	for _, ft := range c.pending {
		if !ft.stopped {
			n++
		}
	}
	return n
}
