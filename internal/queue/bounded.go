package queue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrOverCapacity is returned by From when there are more items than slots.
	ErrOverCapacity = errors.New("queue: items exceed capacity")
	// ErrBadCapacity is returned by From for a capacity less than 1.
	ErrBadCapacity = errors.New("queue: capacity must be at least 1")
)

// Bounded is a fixed-capacity FIFO queue safe for concurrent producers
// and consumers.
//
// Elements live in a ring of Cap() slots. Notifications are sent only on
// transitions: "not empty" when the length goes 0 -> 1, "space available"
// when it goes Cap() -> Cap()-1. Both use Broadcast, so every parked caller
// re-validates the predicate and at most one of them claims the slot.
type Bounded[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf  []T
	head int
	size int
}

// New creates an empty Bounded queue holding at most capacity items.
// It panics if capacity is less than 1.
func New[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		panic("queue: capacity must be at least 1")
	}
	q := &Bounded[T]{
		buf: make([]T, capacity),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// From creates a Bounded queue pre-filled with items, items[0] at the head.
// Unlike New it reports a bad capacity as an error.
func From[T any](capacity int, items []T) (*Bounded[T], error) {
	if capacity < 1 {
		return nil, ErrBadCapacity
	}
	if len(items) > capacity {
		return nil, ErrOverCapacity
	}
	q := New[T](capacity)
	copy(q.buf, items)
	q.size = len(items)
	return q, nil
}

// Push adds v to the tail of the queue.
// Returns false if the queue is full; v is not enqueued.
func (q *Bounded[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		return false
	}
	q.enqueue(v)
	return true
}

// Pop removes and returns the head of the queue.
// Returns false if the queue is empty.
func (q *Bounded[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.dequeue(), true
}

// WaitAndPush blocks until the queue has space, then adds v to the tail.
//
// The wait and the append form one critical section, so no other caller
// can take the slot in between. If ctx is cancelled before a slot is
// claimed, WaitAndPush returns ctx.Err() and v is not enqueued.
func (q *Bounded[T]) WaitAndPush(ctx context.Context, v T) error {
	stop := q.wakeOnDone(ctx, q.notFull)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == len(q.buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.enqueue(v)
	return nil
}

// WaitAndPop blocks until the queue is non-empty, then removes and returns
// the head. If ctx is cancelled first, it returns ctx.Err() and the queue
// is left untouched.
func (q *Bounded[T]) WaitAndPop(ctx context.Context) (T, error) {
	stop := q.wakeOnDone(ctx, q.notEmpty)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for q.size == 0 {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.notEmpty.Wait()
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return q.dequeue(), nil
}

// Empty reports whether the queue holds no items.
func (q *Bounded[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == 0
}

// Full reports whether the queue holds Cap() items.
func (q *Bounded[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == len(q.buf)
}

// Len returns the current number of items in the queue.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the capacity of the queue.
// The ring is never resized, so no lock is taken.
func (q *Bounded[T]) Cap() int {
	return len(q.buf)
}

// Clear removes every item. Producers blocked in WaitAndPush are woken
// when anything was removed.
func (q *Bounded[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return
	}
	clear(q.buf)
	q.head = 0
	q.size = 0
	q.notFull.Broadcast()
}

// Snapshot returns a copy of the items, head first.
func (q *Bounded[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, q.size)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// Equal reports whether a and b hold the same items in the same order.
// Capacities are not compared.
func Equal[T comparable](a, b *Bounded[T]) bool {
	if a == b {
		return true
	}
	as, bs := a.Snapshot(), b.Snapshot()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// enqueue appends v. Caller holds q.mu and has checked for space.
func (q *Bounded[T]) enqueue(v T) {
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
	if q.size == 1 {
		q.notEmpty.Broadcast()
	}
}

// dequeue removes the head. Caller holds q.mu and has checked size > 0.
func (q *Bounded[T]) dequeue() T {
	var zero T
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	if q.size == len(q.buf)-1 {
		q.notFull.Broadcast()
	}
	return v
}

// wakeOnDone arranges for cond to be broadcast once ctx is done, so a
// caller parked in cond.Wait re-checks ctx.Err() immediately. The broadcast
// is made under q.mu: a waiter either sees the cancellation before parking
// or is already parked when the broadcast lands.
func (q *Bounded[T]) wakeOnDone(ctx context.Context, cond *sync.Cond) (stop func() bool) {
	if ctx.Done() == nil {
		return func() bool { return false }
	}
	return context.AfterFunc(ctx, func() {
		q.mu.Lock()
		cond.Broadcast()
		q.mu.Unlock()
	})
}
