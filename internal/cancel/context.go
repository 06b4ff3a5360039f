package cancel

import "context"

// ContextCanceler is a worker's private stop handle.
//
// The harness derives one per producer, consumer and coordinator from the
// Run context and collects them in a Group. The worker passes Context() to
// WaitAndPush and WaitAndPop; Cancel() then wakes it even while it is
// parked on a full or empty queue. Cancelling the Run context stops every
// handle at once.
type ContextCanceler struct {
	ctx  context.Context
	stop context.CancelFunc
}

// NewContext derives a handle from parent.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, stop := context.WithCancel(parent)
	return &ContextCanceler{ctx: ctx, stop: stop}
}

// Done reports, without blocking, whether the handle has been stopped
// either directly or through its parent.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel stops the handle. Calling it again has no effect.
func (c *ContextCanceler) Cancel() {
	c.stop()
}

// Context is what the worker hands to blocking queue calls.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
