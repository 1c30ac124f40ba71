// Package countdown implements the visible remaining-time counter that runs
// in lockstep with a recording session.
package countdown

import (
	"sync"
	"time"
)

// TickFunc receives the remaining whole seconds after each tick, ending at 0.
type TickFunc func(remaining int)

// Timer ticks a counter down once per interval. A Timer may be restarted;
// each Start fully resets prior state.
type Timer struct {
	interval time.Duration

	mu     sync.Mutex
	cancel chan struct{}
}

// NewTimer creates a timer with a 1-second tick.
func NewTimer() *Timer {
	return &Timer{interval: time.Second}
}

// NewTimerWithInterval creates a timer with a custom tick interval. Used in
// tests to avoid real-time waits.
func NewTimerWithInterval(interval time.Duration) *Timer {
	return &Timer{interval: interval}
}

// Start begins ticking down from totalSeconds, invoking onTick after each
// interval until the counter reaches 0. Any previous run is cancelled first.
func (t *Timer) Start(totalSeconds int, onTick TickFunc) {
	t.Cancel()

	t.mu.Lock()
	cancel := make(chan struct{})
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(totalSeconds, onTick, cancel)
}

func (t *Timer) run(totalSeconds int, onTick TickFunc, cancel chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := totalSeconds
	for remaining > 0 {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			// A tick that raced with Cancel must not slip out.
			select {
			case <-cancel:
				return
			default:
			}
			remaining--
			onTick(remaining)
		}
	}
}

// Cancel stops ticking immediately. Safe to call when the timer is not
// running, and safe to call more than once.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
}
