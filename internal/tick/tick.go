// Package tick provides non-blocking periodic triggers.
//
// Long-running loops (a coordinator waiting for a queue to drain, a consumer
// draining it) poll a Ticker to decide when to emit a progress line, rather
// than logging on every iteration. Two implementations exist:
//   - StdTicker: wraps time.Ticker
//   - AtomicTicker: compares monotonic timestamps with a CAS, no timer heap
package tick

import "time"

// Ticker signals when a time interval has elapsed.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// This is a non-blocking check.
	Tick() bool

	// Reset starts a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	// After Stop, the ticker should not be used.
	Stop()
}

// DefaultInterval is the default progress reporting period.
const DefaultInterval = time.Second
