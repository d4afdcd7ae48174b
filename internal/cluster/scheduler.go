package cluster

// Scheduler picks a worker, by pool index, for a new job from a registry
// snapshot and the per-worker completed counts. Implementations must be pure;
// reserving the slot is the Registry's job.
type Scheduler interface {
	Pick(snap []WorkerStatus, completed []uint64) (int, bool)
}

// LeastLoaded prefers idle healthy workers with the fewest completed jobs and
// degrades to any healthy worker rather than refusing a job while capacity
// exists. Ties go to the earliest pool slot.
type LeastLoaded struct{}

func (LeastLoaded) Pick(snap []WorkerStatus, completed []uint64) (int, bool) {
	if i, ok := argmin(snap, completed, func(w WorkerStatus) bool { return w.Healthy && !w.Busy }); ok {
		return i, true
	}
	return argmin(snap, completed, func(w WorkerStatus) bool { return w.Healthy })
}

func argmin(snap []WorkerStatus, completed []uint64, eligible func(WorkerStatus) bool) (int, bool) {
	best := -1
	for i, w := range snap {
		if !eligible(w) {
			continue
		}
		if best == -1 || countAt(completed, i) < countAt(completed, best) {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func countAt(completed []uint64, i int) uint64 {
	if i < len(completed) {
		return completed[i]
	}
	return 0
}
