package cancel

import "sync/atomic"

// AtomicCanceler uses an atomic.Bool for cancellation signaling.
//
// Done() is a single atomic load. It cannot wake a blocked goroutine, so
// use it for flags that are only polled, such as a supervisor's closed state.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic creates a new AtomicCanceler.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done returns true if cancellation has been triggered.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel triggers cancellation.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// CancelOnce triggers cancellation and reports whether this call was the
// one that did it.
func (a *AtomicCanceler) CancelOnce() bool {
	return a.done.CompareAndSwap(false, true)
}
