package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/you/formulapool/internal/config"
	"github.com/you/formulapool/internal/engine"
	"github.com/you/formulapool/internal/logx"
)

const engineProbeTimeout = 5 * time.Second

// Run starts the worker: it picks a recognition engine, keeps its readiness
// current, and serves the worker HTTP contract until ctx is cancelled.
func Run(ctx context.Context, cfg config.WorkerConfig) error {
	var eng engine.Engine
	if cfg.EngineURL != "" {
		eng = engine.NewHTTPEngine(cfg.EngineURL)
		wl := logx.WithWorker(cfg.WorkerID)
		wl.Info().Str("engine_url", cfg.EngineURL).Msg("using http recognition engine")
	} else {
		eng = engine.Demo{}
		wl := logx.WithWorker(cfg.WorkerID)
		wl.Info().Msg("no engine configured, running in demo mode")
	}
	SetWorkerInfo(cfg.WorkerID, cfg.ModelName)

	interval := cfg.EngineCheckInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go monitorEngine(ctx, eng, interval)

	addr, err := StartServer(ctx, fmt.Sprintf(":%d", cfg.Port), eng)
	if err != nil {
		return err
	}
	wl := logx.WithWorker(cfg.WorkerID)
	wl.Info().Str("addr", addr).Str("model", cfg.ModelName).Msg("worker listening")
	<-ctx.Done()
	return nil
}

// monitorEngine keeps the ready flag in sync with the engine's health,
// logging only transitions.
func monitorEngine(ctx context.Context, eng engine.Engine, interval time.Duration) {
	probeEngine(ctx, eng)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeEngine(ctx, eng)
		}
	}
}

func probeEngine(ctx context.Context, eng engine.Engine) {
	pctx, cancel := context.WithTimeout(ctx, engineProbeTimeout)
	defer cancel()
	err := eng.Health(pctx)
	ready := err == nil
	if ready != engineReady() {
		if ready {
			wl := logx.WithWorker(workerID())
			wl.Info().Msg("engine ready")
		} else {
			wl := logx.WithWorker(workerID())
			wl.Warn().Err(err).Msg("engine unavailable")
		}
	}
	SetEngineReady(ready)
}
