package harness

import "sync/atomic"

// Counter is the shared "remaining work" count behaviors use to agree on
// when the input has drained. It is independent of the queue's lock.
type Counter struct {
	n atomic.Int64
}

// NewCounter returns a Counter starting at n.
func NewCounter(n int64) *Counter {
	c := &Counter{}
	c.n.Store(n)
	return c
}

// Load returns the current count.
func (c *Counter) Load() int64 {
	return c.n.Load()
}

// Add adds delta and returns the new count.
func (c *Counter) Add(delta int64) int64 {
	return c.n.Add(delta)
}

// Done decrements the count by one and returns the new count.
func (c *Counter) Done() int64 {
	return c.n.Add(-1)
}
