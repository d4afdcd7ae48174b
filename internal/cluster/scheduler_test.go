package cluster

import "testing"

func worker(id string, healthy, busy bool) WorkerStatus {
	return WorkerStatus{
		WorkerRef:   WorkerRef{ID: id, URL: "http://" + id},
		WorkerState: WorkerState{Healthy: healthy, Busy: busy},
	}
}

func TestLeastLoadedPick(t *testing.T) {
	tests := []struct {
		name      string
		snap      []WorkerStatus
		completed []uint64
		want      int
		wantOK    bool
	}{
		{
			name: "least loaded idle wins",
			snap: []WorkerStatus{
				worker("worker-1", true, false),
				worker("worker-2", true, false),
				worker("worker-3", false, false),
			},
			completed: []uint64{3, 1, 0},
			want:      1,
			wantOK:    true,
		},
		{
			name: "idle preferred over busy with fewer jobs",
			snap: []WorkerStatus{
				worker("worker-1", true, true),
				worker("worker-2", true, false),
			},
			completed: []uint64{0, 9},
			want:      1,
			wantOK:    true,
		},
		{
			name: "all busy degrades to least loaded healthy",
			snap: []WorkerStatus{
				worker("worker-1", true, true),
				worker("worker-2", true, true),
			},
			completed: []uint64{5, 2},
			want:      1,
			wantOK:    true,
		},
		{
			name: "tie goes to earliest pool slot",
			snap: []WorkerStatus{
				worker("worker-1", true, false),
				worker("worker-2", true, false),
			},
			completed: []uint64{4, 4},
			want:      0,
			wantOK:    true,
		},
		{
			name: "unhealthy never picked",
			snap: []WorkerStatus{
				worker("worker-1", false, false),
				worker("worker-2", true, true),
			},
			completed: []uint64{0, 100},
			want:      1,
			wantOK:    true,
		},
		{
			name: "no healthy workers",
			snap: []WorkerStatus{
				worker("worker-1", false, false),
				worker("worker-2", false, true),
			},
			completed: []uint64{0, 0},
			wantOK:    false,
		},
		{
			name:   "empty pool",
			snap:   nil,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LeastLoaded{}.Pick(tt.snap, tt.completed)
			if ok != tt.wantOK {
				t.Fatalf("Pick ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Pick = %d (%s), want %d (%s)", got, tt.snap[got].ID, tt.want, tt.snap[tt.want].ID)
			}
		})
	}
}
