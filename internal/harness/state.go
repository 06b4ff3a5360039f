package harness

import (
	"fmt"
	"sync/atomic"
)

// Role says which side of the queue a worker is on.
type Role uint8

const (
	Producer Role = iota
	Consumer
)

func (r Role) String() string {
	switch r {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// State is a worker's position in its lifecycle:
//
//	Spawned -> Running -> Completed | Cancelled | Failed
type State int32

const (
	Spawned State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s >= Completed
}

// WorkerID identifies a worker within one harness.
type WorkerID struct {
	Role  Role
	Index int
}

func (id WorkerID) String() string {
	return fmt.Sprintf("%s-%d", id.Role, id.Index)
}

// Failure is a caught worker error or panic.
type Failure struct {
	Worker WorkerID
	Err    error
	// Panicked is set when Err was recovered from a panic.
	Panicked bool
}

func (f Failure) Error() string {
	if f.Panicked {
		return fmt.Sprintf("%s panicked: %v", f.Worker, f.Err)
	}
	return fmt.Sprintf("%s failed: %v", f.Worker, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

type workerState struct {
	id    WorkerID
	state atomic.Int32
}

func (w *workerState) set(s State) {
	w.state.Store(int32(s))
}

func (w *workerState) get() State {
	return State(w.state.Load())
}
