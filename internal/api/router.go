package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/you/formulapool/internal/cluster"
)

// NewRouter builds the balancer's API router.
func NewRouter(reg *cluster.Registry, stats *cluster.Stats, fwd *cluster.Forwarder, info VersionInfo) chi.Router {
	r := chi.NewRouter()
	for _, m := range middlewareChain() {
		r.Use(m)
	}
	status := &StatusHandler{Registry: reg, Stats: stats}
	r.Post("/predict", PredictHandler(fwd))
	r.Get("/health", HealthHandler(reg))
	r.Get("/cluster/status", status.GetStatus)
	r.Get("/cluster/status/stream", status.GetStatusStream)
	r.Get("/version", VersionHandler(info))
	return r
}
