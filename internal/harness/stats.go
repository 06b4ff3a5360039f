package harness

import (
	"sync/atomic"
	"time"
)

// Stats counts worker outcomes for one harness.
//
// Fields are read independently, so Stats taken while workers run may be
// inconsistent across fields.
type Stats struct {
	Started        uint64
	Completed      uint64
	Cancelled      uint64
	Failed         uint64
	DroppedReports uint64
	Elapsed        time.Duration
}

type stats struct {
	started        atomic.Uint64
	completed      atomic.Uint64
	cancelled      atomic.Uint64
	failed         atomic.Uint64
	droppedReports atomic.Uint64
	elapsed        atomic.Int64
}

func (s *stats) record(st State) {
	switch st {
	case Completed:
		s.completed.Add(1)
	case Cancelled:
		s.cancelled.Add(1)
	case Failed:
		s.failed.Add(1)
	}
}

func (s *stats) snapshot() Stats {
	return Stats{
		Started:        s.started.Load(),
		Completed:      s.completed.Load(),
		Cancelled:      s.cancelled.Load(),
		Failed:         s.failed.Load(),
		DroppedReports: s.droppedReports.Load(),
		Elapsed:        time.Duration(s.elapsed.Load()),
	}
}
