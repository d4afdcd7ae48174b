package cluster

import (
	"sync"
	"time"
)

// WorkerRef identifies one slot of the fixed worker pool. Refs are created at
// startup and never change for the lifetime of the process.
type WorkerRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WorkerState is the last observed state of a worker. Workers start unhealthy
// until their first successful probe. The busy flag is advisory; the worker's
// own single-flight gate is authoritative.
type WorkerState struct {
	Healthy       bool      `json:"healthy"`
	Busy          bool      `json:"busy"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	// RequestsProcessed is the worker's own counter as of the last probe,
	// kept for reporting only.
	RequestsProcessed uint64 `json:"requests_processed"`
}

// WorkerStatus joins a ref with a copy of its state in one snapshot row.
type WorkerStatus struct {
	WorkerRef
	WorkerState
}

// Registry tracks the fixed worker pool and its last observed state. All
// scheduling reads go through Snapshot or Claim so a decision never acts on
// state torn by a concurrent update.
type Registry struct {
	mu     sync.RWMutex
	refs   []WorkerRef
	states []WorkerState
	index  map[string]int
}

func NewRegistry(refs []WorkerRef) *Registry {
	r := &Registry{
		refs:   append([]WorkerRef(nil), refs...),
		states: make([]WorkerState, len(refs)),
		index:  make(map[string]int, len(refs)),
	}
	for i, ref := range r.refs {
		r.index[ref.ID] = i
	}
	return r
}

// Len returns the pool size.
func (r *Registry) Len() int {
	return len(r.refs)
}

// Refs returns the pool in stable order.
func (r *Registry) Refs() []WorkerRef {
	return append([]WorkerRef(nil), r.refs...)
}

// Snapshot returns a consistent point-in-time copy of every worker joined
// with its state, in pool order.
func (r *Registry) Snapshot() []WorkerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []WorkerStatus {
	snap := make([]WorkerStatus, len(r.refs))
	for i, ref := range r.refs {
		snap[i] = WorkerStatus{WorkerRef: ref, WorkerState: r.states[i]}
	}
	return snap
}

// HealthyCount returns how many workers are currently healthy.
func (r *Registry) HealthyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.states {
		if s.Healthy {
			n++
		}
	}
	return n
}

// UpdateProbe overwrites a worker's state with the result of a successful
// probe and stamps the check time. It reports whether the worker was healthy
// before the update. Unknown ids are a programming error.
func (r *Registry) UpdateProbe(id string, ready, busy bool, processed uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.mustIndex(id)
	was := r.states[i].Healthy
	r.states[i] = WorkerState{
		Healthy:           ready,
		Busy:              busy,
		LastCheckedAt:     time.Now(),
		RequestsProcessed: processed,
	}
	return was
}

// MarkUnreachable records a failed probe. An unreachable worker is neither
// healthy nor busy; its last reported counter is kept. It reports whether the
// worker was healthy before.
func (r *Registry) MarkUnreachable(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.mustIndex(id)
	was := r.states[i].Healthy
	r.states[i].Healthy = false
	r.states[i].Busy = false
	r.states[i].LastCheckedAt = time.Now()
	return was
}

// Claim runs the scheduler over the current state and marks the chosen worker
// busy in the same critical section, so two concurrent claims can never pick
// the same idle worker. It returns the claimed ref and its pool index.
func (r *Registry) Claim(sched Scheduler, completed []uint64) (WorkerRef, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := sched.Pick(r.snapshotLocked(), completed)
	if !ok {
		return WorkerRef{}, 0, false
	}
	r.states[i].Busy = true
	return r.refs[i], i, true
}

func (r *Registry) mustIndex(id string) int {
	i, ok := r.index[id]
	if !ok {
		panic("cluster: unknown worker id " + id)
	}
	return i
}
