package tick

import "time"

// StdTicker wraps time.Ticker for the Ticker interface.
//
// Each call to Tick() performs a non-blocking receive on the ticker's
// channel. It is not meant to be shared: a tick consumed by one caller is
// gone for everyone else.
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewTicker creates a StdTicker with the specified interval.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// Tick returns true if the interval has elapsed.
func (t *StdTicker) Tick() bool {
	select {
	case <-t.ticker.C:
		return true
	default:
		return false
	}
}

// C exposes the underlying channel for callers that want to block until the
// next tick instead of polling.
func (t *StdTicker) C() <-chan time.Time {
	return t.ticker.C
}

// Reset resets the ticker to start a new interval from now.
func (t *StdTicker) Reset() {
	t.ticker.Reset(t.interval)
}

// Stop stops the ticker and releases resources.
func (t *StdTicker) Stop() {
	t.ticker.Stop()
}

// Interval returns the ticker's interval.
func (t *StdTicker) Interval() time.Duration {
	return t.interval
}
