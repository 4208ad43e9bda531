package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	clock  *ManualClock
	values []string
	at     []time.Duration
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.at = append(r.at, r.clock.Now().Sub(epoch))
}

func newTestDebouncer(quiet time.Duration) (*Debouncer[string], *recorder) {
	clock := NewManualClock(epoch)
	rec := &recorder{clock: clock}
	return New(quiet, rec.emit, WithClock(clock)), rec
}

func TestBurstEmitsOnceAfterLastEvent(t *testing.T) {
	d, rec := newTestDebouncer(200 * time.Millisecond)
	clock := rec.clock

	d.Trigger("a")
	clock.Advance(50 * time.Millisecond)
	d.Trigger("ab")
	clock.Advance(70 * time.Millisecond)
	d.Trigger("abc")

	deadline, ok := d.Deadline()
	require.True(t, ok)
	assert.Equal(t, 320*time.Millisecond, deadline.Sub(epoch))

	clock.Advance(199 * time.Millisecond)
	assert.Empty(t, rec.values, "nothing may fire before the quiet period ends")
	assert.Equal(t, StatePending, d.State())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"abc"}, rec.values)
	assert.Equal(t, []time.Duration{320 * time.Millisecond}, rec.at)
	assert.Equal(t, StateIdle, d.State())

	clock.Advance(time.Second)
	assert.Len(t, rec.values, 1)
}

func TestSeparateBurstsEmitSeparately(t *testing.T) {
	d, rec := newTestDebouncer(100 * time.Millisecond)

	d.Trigger("one")
	rec.clock.Advance(150 * time.Millisecond)
	d.Trigger("two")
	rec.clock.Advance(150 * time.Millisecond)

	assert.Equal(t, []string{"one", "two"}, rec.values)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 250 * time.Millisecond}, rec.at)
}

func TestFlush(t *testing.T) {
	d, rec := newTestDebouncer(200 * time.Millisecond)

	assert.False(t, d.Flush())

	d.Trigger("x")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"x"}, rec.values)
	assert.Equal(t, StateIdle, d.State())

	rec.clock.Advance(time.Second)
	assert.Len(t, rec.values, 1, "the flushed timer must not fire again")
}

func TestCancel(t *testing.T) {
	d, rec := newTestDebouncer(200 * time.Millisecond)

	d.Trigger("x")
	d.Cancel()
	assert.Equal(t, StateIdle, d.State())
	_, ok := d.Deadline()
	assert.False(t, ok)

	rec.clock.Advance(time.Second)
	assert.Empty(t, rec.values)
}

func TestSupersededTimerIsIgnored(t *testing.T) {
	d, rec := newTestDebouncer(200 * time.Millisecond)

	d.Trigger("old")
	d.fired(d.arm - 1)
	assert.Empty(t, rec.values)
	assert.Equal(t, StatePending, d.State())
}

func TestDefaultQuiet(t *testing.T) {
	d := New(0, func(string) {})
	assert.Equal(t, DefaultQuiet, d.Quiet())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
}

func TestSystemClock(t *testing.T) {
	done := make(chan string, 1)
	d := New(10*time.Millisecond, func(v string) { done <- v })

	d.Trigger("a")
	d.Trigger("b")

	select {
	case v := <-done:
		assert.Equal(t, "b", v)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
}

func TestManualClockStop(t *testing.T) {
	clock := NewManualClock(epoch)
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })
	assert.Equal(t, 1, clock.Pending())
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Zero(t, clock.Pending())
}
