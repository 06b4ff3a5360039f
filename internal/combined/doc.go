// Package combined benchmarks the harness's building blocks together:
// cancellation checks, progress ticks and the bounded queue in one loop,
// and the report ring against the queue for many-writer handoff.
//
// Isolated micro-benchmarks live next to each package; these capture the
// cost a worker actually pays per item.
package combined
