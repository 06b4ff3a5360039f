package tick

import (
	"sync/atomic"
	"time"
)

// epoch anchors the monotonic readings taken by AtomicTicker.
var epoch = time.Now()

// monotonic returns nanoseconds since epoch on the monotonic clock.
func monotonic() int64 {
	return int64(time.Since(epoch))
}

// AtomicTicker fires at most once per interval across all goroutines that
// share it.
//
// Concurrent callers race on a compare-and-swap of the last tick time, so
// when several consumers poll the same ticker only one of them sees true
// for a given interval.
type AtomicTicker struct {
	interval int64 // nanoseconds
	lastTick atomic.Int64
}

// NewAtomicTicker creates an AtomicTicker with the specified interval.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: int64(interval),
	}
	t.lastTick.Store(monotonic())
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
func (a *AtomicTicker) Tick() bool {
	now := monotonic()
	last := a.lastTick.Load()

	if now-last >= a.interval {
		return a.lastTick.CompareAndSwap(last, now)
	}
	return false
}

// Reset starts a new interval from now.
func (a *AtomicTicker) Reset() {
	a.lastTick.Store(monotonic())
}

// Stop is a no-op for AtomicTicker (no resources to release).
func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}
