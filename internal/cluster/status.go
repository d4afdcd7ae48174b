package cluster

// ClusterStatus is the full snapshot served on the status surface.
type ClusterStatus struct {
	Workers        []WorkerStatus `json:"workers"`
	Stats          StatsView      `json:"stats"`
	HealthyWorkers int            `json:"healthy_workers"`
	TotalWorkers   int            `json:"total_workers"`
}

// Status assembles the snapshot on demand; nothing is cached.
func Status(reg *Registry, stats *Stats) ClusterStatus {
	snap := reg.Snapshot()
	healthy := 0
	for _, w := range snap {
		if w.Healthy {
			healthy++
		}
	}
	return ClusterStatus{
		Workers:        snap,
		Stats:          stats.View(),
		HealthyWorkers: healthy,
		TotalWorkers:   len(snap),
	}
}
