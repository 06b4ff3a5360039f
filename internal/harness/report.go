package harness

import (
	ring "github.com/randomizedcoder/go-lock-free-ring"
)

const (
	reportShards          = 8
	defaultReportCapacity = 1024
)

// reports collects Failures from many workers without a shared lock.
//
// Workers write into a sharded MPSC ring, sharded by worker index so that
// concurrent failures rarely contend. The harness is the single reader.
// A full shard drops the report; drops are counted in Stats.
type reports struct {
	r *ring.ShardedRing
}

func newReports(capacity int) (*reports, error) {
	if capacity < reportShards {
		capacity = reportShards
	}
	// Round up to a power of two so every shard gets the same share.
	n := uint64(1)
	for n < uint64(capacity) {
		n <<= 1
	}
	r, err := ring.NewShardedRing(n, uint64(reportShards))
	if err != nil {
		return nil, err
	}
	return &reports{r: r}, nil
}

// put records f, returning false if its shard is full.
func (rp *reports) put(worker int, f Failure) bool {
	return rp.r.Write(uint64(worker), f)
}

// drain reads every queued Failure.
func (rp *reports) drain() []Failure {
	var out []Failure
	for {
		v, ok := rp.r.TryRead()
		if !ok {
			return out
		}
		if f, ok := v.(Failure); ok {
			out = append(out, f)
		}
	}
}
