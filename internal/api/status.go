package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/you/formulapool/internal/cluster"
)

type healthResponse struct {
	Status         string `json:"status"`
	Mode           string `json:"mode"`
	HealthyWorkers int    `json:"healthy_workers"`
	TotalWorkers   int    `json:"total_workers"`
}

// HealthHandler reports balancer liveness. The reply is always 200; the body
// says whether any worker can take a job right now.
func HealthHandler(reg *cluster.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := reg.HealthyCount()
		status := "healthy"
		if healthy == 0 {
			status = "unhealthy"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthResponse{
			Status:         status,
			Mode:           "cluster",
			HealthyWorkers: healthy,
			TotalWorkers:   reg.Len(),
		})
	}
}

// StatusHandler serves cluster snapshots and streams.
type StatusHandler struct {
	Registry *cluster.Registry
	Stats    *cluster.Stats
}

// GetStatus returns a JSON snapshot of the whole cluster.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cluster.Status(h.Registry, h.Stats))
}

// GetStatusStream streams cluster snapshots as Server-Sent Events.
func (h *StatusHandler) GetStatusStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	h.writeStatusEvent(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.writeStatusEvent(w, flusher)
		}
	}
}

func (h *StatusHandler) writeStatusEvent(w http.ResponseWriter, flusher http.Flusher) {
	b, _ := json.Marshal(cluster.Status(h.Registry, h.Stats))
	w.Write([]byte("data: "))
	w.Write(b)
	w.Write([]byte("\n\n"))
	flusher.Flush()
}
