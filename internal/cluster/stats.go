package cluster

import "sync/atomic"

// Stats aggregates request counters for the whole pool. Per-worker counts
// live in a fixed array indexed by pool order so concurrent forwards bump
// them without a shared lock.
type Stats struct {
	ids       []string
	total     atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	perWorker []atomic.Uint64
}

func NewStats(refs []WorkerRef) *Stats {
	s := &Stats{
		ids:       make([]string, len(refs)),
		perWorker: make([]atomic.Uint64, len(refs)),
	}
	for i, ref := range refs {
		s.ids[i] = ref.ID
	}
	return s
}

// RecordRequest counts an inbound job before any scheduling decision.
func (s *Stats) RecordRequest() {
	s.total.Add(1)
}

// RecordSuccess counts a completed job for the worker at pool index i.
func (s *Stats) RecordSuccess(i int) {
	s.succeeded.Add(1)
	s.perWorker[i].Add(1)
}

// RecordFailure counts a job that produced no successful worker response.
func (s *Stats) RecordFailure() {
	s.failed.Add(1)
}

// Completed snapshots the per-worker completed counts in pool order.
func (s *Stats) Completed() []uint64 {
	out := make([]uint64, len(s.perWorker))
	for i := range s.perWorker {
		out[i] = s.perWorker[i].Load()
	}
	return out
}

// StatsView is the JSON rendering of the counters for the status surface.
type StatsView struct {
	TotalRequests      uint64            `json:"total_requests"`
	SuccessfulRequests uint64            `json:"successful_requests"`
	FailedRequests     uint64            `json:"failed_requests"`
	RequestsPerWorker  map[string]uint64 `json:"requests_per_worker"`
}

// View renders the counters. Every worker id is present, even at zero.
func (s *Stats) View() StatsView {
	per := make(map[string]uint64, len(s.ids))
	for i, id := range s.ids {
		per[id] = s.perWorker[i].Load()
	}
	return StatsView{
		TotalRequests:      s.total.Load(),
		SuccessfulRequests: s.succeeded.Load(),
		FailedRequests:     s.failed.Load(),
		RequestsPerWorker:  per,
	}
}
