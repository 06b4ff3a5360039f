package harness

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/go-bounded-queue/internal/queue"
	"github.com/randomizedcoder/go-bounded-queue/internal/tick"
)

// DefaultPollInterval is how often DrainCoordinator re-checks the counter.
const DefaultPollInterval = 10 * time.Millisecond

// Split divides total items into parts shares: equal shares, with the
// remainder added to the last one.
func Split(total, parts int) []int {
	if parts < 1 {
		return nil
	}
	size := total / parts
	out := make([]int, parts)
	for i := range out {
		out[i] = size
	}
	out[parts-1] += total - size*parts
	return out
}

// SliceProducer returns a producer that, on each invocation, claims the
// next unclaimed slice of inputs and pushes its items in order with
// WaitAndPush. Invocations beyond len(inputs) return immediately.
func SliceProducer[T any](inputs [][]T) Worker[T] {
	var next atomic.Int64
	return func(ctx context.Context, q *queue.Bounded[T]) error {
		i := int(next.Add(1) - 1)
		if i >= len(inputs) {
			return nil
		}
		for _, v := range inputs[i] {
			if err := q.WaitAndPush(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// DrainConsumer returns a consumer that pops items with WaitAndPop and
// passes them to handle until remaining reaches zero. Each popped item
// decrements remaining exactly once, even if handle fails or panics, so
// the count always converges.
//
// A consumer that is cancelled after the count reached zero reports
// completion rather than cancellation.
func DrainConsumer[T any](remaining *Counter, handle func(T) error) Worker[T] {
	return func(ctx context.Context, q *queue.Bounded[T]) error {
		for remaining.Load() > 0 {
			v, err := q.WaitAndPop(ctx)
			if err != nil {
				if remaining.Load() <= 0 && isContextErr(err) {
					return nil
				}
				return err
			}
			if err := consume(remaining, v, handle); err != nil {
				return err
			}
		}
		return nil
	}
}

func consume[T any](remaining *Counter, v T, handle func(T) error) error {
	defer remaining.Done()
	if handle == nil {
		return nil
	}
	return handle(v)
}

// DrainCoordinator returns a coordinator that polls every interval until
// remaining is zero and the queue is empty. While waiting it logs progress
// whenever the harness's progress ticker fires.
func DrainCoordinator[T any](remaining *Counter, interval time.Duration) Coordinator[T] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return func(ctx context.Context, q *queue.Bounded[T]) error {
		log := Logger(ctx)
		progress := progressFrom(ctx)

		poll := tick.NewTicker(interval)
		defer poll.Stop()

		for {
			left := remaining.Load()
			if left <= 0 && q.Empty() {
				return nil
			}
			if progress != nil && progress.Tick() {
				log.Info("draining", "remaining", left, "queued", q.Len())
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-poll.C():
			}
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
