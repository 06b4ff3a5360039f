// Package harness runs producer and consumer workers against one shared
// bounded queue and waits for every one of them to finish.
//
// A Harness spawns P producers and Q consumers, each with a private
// cancellation handle, then runs a coordinator that blocks until the input
// has drained. When the coordinator returns, every worker still running is
// asked to stop, and Run joins them all before returning. Close does the
// same from the outside, so the queue is never touched after the harness
// is done with it.
//
// Worker errors and panics are caught at the worker boundary, logged and
// recorded as Failures; they never reach the caller of Run.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/go-bounded-queue/internal/cancel"
	"github.com/randomizedcoder/go-bounded-queue/internal/queue"
	"github.com/randomizedcoder/go-bounded-queue/internal/tick"
)

// DefaultCapacity is the queue capacity used when WithCapacity is not given.
const DefaultCapacity = 10

var (
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("harness: already run")
	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("harness: closed")
)

// Worker is a producer or consumer body. ctx is the worker's own
// cancellation handle; pass it to the queue's blocking calls.
//
// Returning nil marks the worker Completed, returning ctx.Err() marks it
// Cancelled, and any other error (or a panic) marks it Failed.
type Worker[T any] func(ctx context.Context, q *queue.Bounded[T]) error

// Coordinator blocks until the run's input has drained. It receives the
// shared queue only; workers are stopped once it returns.
type Coordinator[T any] func(ctx context.Context, q *queue.Bounded[T]) error

type options struct {
	capacity       int
	logger         *slog.Logger
	progress       tick.Ticker
	reportCapacity int
}

// Option configures a Harness.
type Option func(*options)

// WithCapacity sets the shared queue's capacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger for this harness instead of the package default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProgress sets the ticker that throttles progress logging. The harness
// stops it when Run returns.
func WithProgress(t tick.Ticker) Option {
	return func(o *options) {
		o.progress = t
	}
}

// WithReportCapacity sets how many Failures can be buffered before further
// reports are dropped.
func WithReportCapacity(n int) Option {
	return func(o *options) {
		o.reportCapacity = n
	}
}

// Harness owns one queue and the workers that share it.
type Harness[T any] struct {
	producer    Worker[T]
	consumer    Worker[T]
	coordinator Coordinator[T]
	producers   int
	consumers   int

	q        *queue.Bounded[T]
	log      *slog.Logger
	progress tick.Ticker
	reports  *reports

	mu      sync.Mutex
	started bool
	closed  *cancel.AtomicCanceler
	handles cancel.Group
	workers []*workerState
	wg      sync.WaitGroup
	left    atomic.Int64
	stats   stats

	failMu   sync.Mutex
	failures []Failure
}

// New creates a Harness with producers copies of producer and consumers
// copies of consumer. coordinator may be nil, in which case Run waits for
// the workers to finish on their own.
//
// New panics if a behavior is nil while its count is positive.
func New[T any](producer Worker[T], producers int, consumer Worker[T], consumers int, coordinator Coordinator[T], opts ...Option) *Harness[T] {
	o := options{
		capacity:       DefaultCapacity,
		reportCapacity: defaultReportCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if producers > 0 && producer == nil {
		panic("harness: nil producer")
	}
	if consumers > 0 && consumer == nil {
		panic("harness: nil consumer")
	}
	if o.logger == nil {
		o.logger = defaultLogger
	}
	if o.progress == nil {
		o.progress = tick.NewAtomicTicker(tick.DefaultInterval)
	}

	h := &Harness[T]{
		producer:    producer,
		consumer:    consumer,
		coordinator: coordinator,
		producers:   max(producers, 0),
		consumers:   max(consumers, 0),
		q:           queue.New[T](o.capacity),
		log:         o.logger,
		progress:    o.progress,
		closed:      cancel.NewAtomic(),
	}
	r, err := newReports(o.reportCapacity)
	if err != nil {
		h.log.Warn("failure reports disabled", "err", err)
	} else {
		h.reports = r
	}
	return h
}

// Queue returns the shared queue.
func (h *Harness[T]) Queue() *queue.Bounded[T] {
	return h.q
}

// Run spawns the workers, runs the coordinator, then stops and joins every
// worker. It returns the coordinator's error, if any. Run never returns
// while a worker is still active.
func (h *Harness[T]) Run(ctx context.Context) error {
	start := time.Now()

	coord, err := h.spawn(ctx)
	if err != nil {
		return err
	}
	defer h.progress.Stop()
	h.log.Debug("workers spawned", "producers", h.producers, "consumers", h.consumers, "capacity", h.q.Cap())

	if h.coordinator != nil {
		err = h.coordinate(coord)
		if n := h.handles.CancelAll(); n > 0 {
			h.log.Debug("stopping workers", "live", n)
		}
	}
	h.wg.Wait()

	elapsed := time.Since(start)
	h.stats.elapsed.Store(int64(elapsed))
	st := h.stats.snapshot()
	h.log.Debug("run finished",
		"elapsed", elapsed,
		"completed", st.Completed,
		"cancelled", st.Cancelled,
		"failed", st.Failed)
	return err
}

// Close requests cancellation of every outstanding worker and blocks until
// they have all exited. It is safe to call more than once and concurrently
// with Run.
func (h *Harness[T]) Close() error {
	h.mu.Lock()
	first := h.closed.CancelOnce()
	h.mu.Unlock()

	if n := h.handles.CancelAll(); n > 0 && first {
		h.log.Info("closing with active workers", "active", h.Active())
	}
	h.wg.Wait()
	return nil
}

// Active returns the number of workers that have not yet exited.
func (h *Harness[T]) Active() int {
	return int(h.left.Load())
}

// States returns each worker's current state, producers first.
func (h *Harness[T]) States() []State {
	h.mu.Lock()
	workers := h.workers
	h.mu.Unlock()

	out := make([]State, len(workers))
	for i, w := range workers {
		out[i] = w.get()
	}
	return out
}

// Failures returns every Failure recorded so far.
func (h *Harness[T]) Failures() []Failure {
	h.failMu.Lock()
	defer h.failMu.Unlock()

	if h.reports != nil {
		h.failures = append(h.failures, h.reports.drain()...)
	}
	return append([]Failure(nil), h.failures...)
}

// Stats returns a snapshot of the worker outcome counters.
func (h *Harness[T]) Stats() Stats {
	return h.stats.snapshot()
}

// spawn starts every worker and returns the coordinator's handle. The wait
// group is filled under h.mu so that a concurrent Close either sees no
// workers or all of them.
func (h *Harness[T]) spawn(ctx context.Context) (*cancel.ContextCanceler, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Done() {
		return nil, ErrClosed
	}
	if h.started {
		return nil, ErrAlreadyRun
	}
	h.started = true

	ctx = withLogger(ctx, h.log)
	ctx = withProgress(ctx, h.progress)

	total := h.producers + h.consumers
	h.workers = make([]*workerState, 0, total)
	h.left.Store(int64(total))
	h.wg.Add(total)

	for i := 0; i < h.producers; i++ {
		h.start(ctx, WorkerID{Role: Producer, Index: i}, h.producer)
	}
	for i := 0; i < h.consumers; i++ {
		h.start(ctx, WorkerID{Role: Consumer, Index: i}, h.consumer)
	}

	coord := cancel.NewContext(ctx)
	h.handles.Add(coord)
	return coord, nil
}

func (h *Harness[T]) start(ctx context.Context, id WorkerID, w Worker[T]) {
	ws := &workerState{id: id}
	h.workers = append(h.workers, ws)
	handle := cancel.NewContext(withLogger(ctx, h.log.With("worker", id.String())))
	h.handles.Add(handle)
	go h.runWorker(len(h.workers)-1, ws, handle, w)
}

func (h *Harness[T]) runWorker(idx int, ws *workerState, handle *cancel.ContextCanceler, w Worker[T]) {
	defer h.wg.Done()
	defer h.left.Add(-1)
	defer handle.Cancel()

	ws.set(Running)
	h.stats.started.Add(1)

	panicked, err := call(func() error { return w(handle.Context(), h.q) })
	final := classify(err)
	ws.set(final)
	h.stats.record(final)

	if final != Failed {
		return
	}
	f := Failure{Worker: ws.id, Err: err, Panicked: panicked}
	h.log.Error("worker failed", "worker", ws.id.String(), "panic", panicked, "err", err)
	if h.reports == nil || !h.reports.put(idx, f) {
		h.stats.droppedReports.Add(1)
	}
}

func (h *Harness[T]) coordinate(coord *cancel.ContextCanceler) error {
	panicked, err := call(func() error { return h.coordinator(coord.Context(), h.q) })
	if panicked {
		h.log.Error("coordinator panicked", "err", err)
	}
	return err
}

// call runs fn, converting a panic into an error.
func call(fn func() error) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	return false, fn()
}

func classify(err error) State {
	switch {
	case err == nil:
		return Completed
	case isContextErr(err):
		return Cancelled
	default:
		return Failed
	}
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	progressKey
)

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func withProgress(ctx context.Context, t tick.Ticker) context.Context {
	return context.WithValue(ctx, progressKey, t)
}

// Logger returns the logger a worker or coordinator should use. Inside a
// harness it carries the worker's identity; elsewhere it is the package
// default.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

func progressFrom(ctx context.Context) tick.Ticker {
	t, _ := ctx.Value(progressKey).(tick.Ticker)
	return t
}
