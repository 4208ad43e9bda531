// Package debounce coalesces bursts of change events into a single trailing
// dispatch after a quiet period.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet period used when none is configured.
const DefaultQuiet = 200 * time.Millisecond

// State is the scheduler state.
type State int

const (
	// StateIdle means no dispatch is scheduled.
	StateIdle State = iota
	// StatePending means a dispatch is scheduled for the current deadline.
	StatePending
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

type options struct {
	clock Clock
}

// Option configures a Debouncer.
type Option func(*options)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Debouncer is a trailing-edge debounce state machine. Every Trigger moves it
// to pending and restarts the quiet period; when the period elapses without a
// new Trigger the latest value is emitted and the state returns to idle.
type Debouncer[T any] struct {
	mu    sync.Mutex
	clock Clock
	quiet time.Duration
	emit  func(T)

	state    State
	deadline time.Time
	latest   T
	timer    Timer
	// arm identifies the current timer so that a superseded timer firing late is ignored.
	arm uint64
}

// New creates an idle debouncer that calls emit with the latest triggered
// value. A non-positive quiet period means DefaultQuiet.
func New[T any](quiet time.Duration, emit func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: SystemClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer[T]{
		clock: o.clock,
		quiet: quiet,
		emit:  emit,
	}
}

// Quiet returns the configured quiet period.
func (d *Debouncer[T]) Quiet() time.Duration {
	return d.quiet
}

// Trigger records v as the latest value and restarts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.arm++
	arm := d.arm
	d.latest = v
	d.state = StatePending
	d.deadline = d.clock.Now().Add(d.quiet)
	d.timer = d.clock.AfterFunc(d.quiet, func() {
		d.fired(arm)
	})
}

func (d *Debouncer[T]) fired(arm uint64) {
	d.mu.Lock()
	if d.state != StatePending || arm != d.arm {
		d.mu.Unlock()
		return
	}
	v := d.takeLocked()
	d.mu.Unlock()

	d.emit(v)
}

// Flush emits the pending value immediately. It reports whether anything was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.state != StatePending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.arm++
	v := d.takeLocked()
	d.mu.Unlock()

	d.emit(v)
	return true
}

// Cancel drops the pending value without emitting it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.arm++
	d.takeLocked()
}

// State returns the current state.
func (d *Debouncer[T]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Deadline returns when the pending value will be emitted.
func (d *Debouncer[T]) Deadline() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StatePending {
		return time.Time{}, false
	}
	return d.deadline, true
}

func (d *Debouncer[T]) takeLocked() T {
	v := d.latest
	var zero T
	d.latest = zero
	d.state = StateIdle
	d.deadline = time.Time{}
	d.timer = nil
	return v
}
