// Package cancel provides the cancellation handles given to queue workers.
//
// This package offers two implementations of the Canceler interface:
//   - ContextCanceler: per-worker handle backed by context.Context, so the
//     blocking queue calls can be woken the moment it is cancelled
//   - AtomicCanceler: a bare atomic.Bool flag for state that is only polled
//
// Group collects handles so a supervisor can cancel all of them at once.
package cancel

import "sync"

// Canceler provides cancellation signaling to workers.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// Group is a set of Cancelers cancelled together.
// The zero value is ready to use.
type Group struct {
	mu      sync.Mutex
	members []Canceler
}

// Add registers c with the group.
func (g *Group) Add(c Canceler) {
	g.mu.Lock()
	g.members = append(g.members, c)
	g.mu.Unlock()
}

// CancelAll cancels every registered Canceler and returns how many of them
// were still live.
func (g *Group) CancelAll() int {
	g.mu.Lock()
	members := append([]Canceler(nil), g.members...)
	g.mu.Unlock()

	live := 0
	for _, c := range members {
		if !c.Done() {
			live++
		}
		c.Cancel()
	}
	return live
}

// Len returns the number of registered Cancelers.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
