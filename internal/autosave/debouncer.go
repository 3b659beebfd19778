// Package autosave provides a debouncer that coalesces bursts of triggers
// into a single deferred execution. Each trigger cancels a previously
// scheduled run and starts the delay over; a run already executing is never
// cancelled.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiescence window before a scheduled run fires.
const DefaultDelay = 3500 * time.Millisecond

// Clock abstracts timer creation so tests can drive time manually.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the controllable handle AfterFunc returns.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer schedules a function to run after a quiet period. Trigger calls
// during the window push the run back; Flush runs immediately; Stop cancels
// any pending run.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu      sync.Mutex
	pending Timer
	fn      func()
}

// New builds a debouncer with the given delay. A non-positive delay falls
// back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	return NewWithClock(delay, realClock{})
}

func NewWithClock(delay time.Duration, clock Clock) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, clock: clock}
}

// Trigger schedules fn to run after the delay, replacing any run scheduled
// earlier. The most recent fn wins.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.fn = fn
	d.pending = d.clock.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.fn
	d.fn = nil
	d.pending = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush runs the pending function immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.pending != nil {
		d.pending.Stop()
	}
	fn := d.fn
	d.fn = nil
	d.pending = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop cancels the pending run without executing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.fn = nil
}
