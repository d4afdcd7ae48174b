package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/you/formulapool/internal/api"
	"github.com/you/formulapool/internal/cluster"
	"github.com/you/formulapool/internal/config"
)

// New constructs the HTTP handler for the balancer.
func New(cfg config.ServerConfig, reg *cluster.Registry, stats *cluster.Stats, fwd *cluster.Forwarder, info api.VersionInfo) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", api.NewRouter(reg, stats, fwd, info))
	return r
}
