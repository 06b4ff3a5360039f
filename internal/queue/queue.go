// Package queue provides a bounded, thread-safe FIFO queue for multiple
// producers and multiple consumers.
//
// Bounded offers two families of operations:
//   - Push/Pop: non-blocking. Push returns false if full, Pop returns false
//     if empty. A failed call never mutates the queue.
//   - WaitAndPush/WaitAndPop: blocking. Producers wait for space, consumers
//     wait for an element. Both return ctx.Err() as soon as their context is
//     cancelled.
//
// # Synchronization
//
// One mutex guards the element ring. Two condition variables ("not empty"
// and "space available") park blocked callers. Waiters always re-check their
// predicate after waking, so spurious and stolen wakeups are harmless.
//
// Correct usage:
//   - Any number of goroutines may call any method concurrently
//   - Snapshot/From are meant for an idle queue (archiving, restore)
package queue

import "context"

// Queue is a non-blocking FIFO queue.
//
// Push returns false if the queue is full,
// Pop returns false if the queue is empty.
type Queue[T any] interface {
	// Push adds an item to the tail of the queue.
	// Returns false if the queue is full.
	Push(T) bool

	// Pop removes and returns the head of the queue.
	// Returns false if the queue is empty.
	Pop() (T, bool)
}

// Blocking is a Queue whose callers can also wait for space or for an item.
type Blocking[T any] interface {
	Queue[T]

	// WaitAndPush blocks until there is space, then adds v.
	// Returns ctx.Err() without enqueuing if ctx is cancelled first.
	WaitAndPush(ctx context.Context, v T) error

	// WaitAndPop blocks until an item is available, then removes it.
	// Returns ctx.Err() without dequeuing if ctx is cancelled first.
	WaitAndPop(ctx context.Context) (T, error)

	// Len returns the current number of items in the queue.
	Len() int

	// Cap returns the fixed capacity of the queue.
	Cap() int
}
