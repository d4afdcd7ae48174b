package cluster

import (
	"context"
	"sync"
	"time"

	"github.com/you/formulapool/internal/logx"
	"github.com/you/formulapool/internal/metrics"
	"github.com/you/formulapool/internal/workerapi"
)

// StatusClient probes a worker's status endpoint.
type StatusClient interface {
	Status(ctx context.Context, baseURL string) (workerapi.StatusResponse, error)
}

// Poller keeps every worker's recorded state current by probing each endpoint
// on a fixed interval, independently of job traffic.
type Poller struct {
	reg      *Registry
	client   StatusClient
	interval time.Duration
	timeout  time.Duration
}

func NewPoller(reg *Registry, client StatusClient, interval, timeout time.Duration) *Poller {
	return &Poller{reg: reg, client: client, interval: interval, timeout: timeout}
}

// Run probes every worker until ctx is cancelled. Each worker gets its own
// loop so a hung endpoint never delays the others. The first probe fires
// immediately.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ref := range p.reg.Refs() {
		wg.Add(1)
		go func(ref WorkerRef) {
			defer wg.Done()
			p.pollWorker(ctx, ref)
		}(ref)
	}
	wg.Wait()
}

func (p *Poller) pollWorker(ctx context.Context, ref WorkerRef) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.Refresh(ctx, ref)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx, ref)
		}
	}
}

// Refresh probes one worker and overwrites its recorded state. Probe failures
// only degrade the worker's health; they are never propagated. Health
// transitions are logged once per flip, not on every probe.
func (p *Poller) Refresh(ctx context.Context, ref WorkerRef) {
	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	st, err := p.client.Status(pctx, ref.URL)
	if err != nil {
		if was := p.reg.MarkUnreachable(ref.ID); was {
			wl := logx.WithWorker(ref.ID)
			wl.Warn().Err(err).Msg("worker unreachable")
		}
		metrics.SetWorkerProbe(ref.ID, false, false)
	} else {
		was := p.reg.UpdateProbe(ref.ID, st.Ready, st.Busy, st.RequestsProcessed)
		if !was && st.Ready {
			wl := logx.WithWorker(ref.ID)
			wl.Info().Msg("worker healthy")
		} else if was && !st.Ready {
			wl := logx.WithWorker(ref.ID)
			wl.Warn().Msg("worker not ready")
		}
		metrics.SetWorkerProbe(ref.ID, st.Ready, st.Busy)
	}
	metrics.SetHealthyWorkers(p.reg.HealthyCount())
}

// AwaitReady re-probes the whole pool until every worker is healthy or the
// wait window elapses, and returns the healthy count. It is a startup
// convenience; serving never waits for it.
func (p *Poller) AwaitReady(ctx context.Context, wait time.Duration) int {
	deadline := time.Now().Add(wait)
	for {
		p.refreshAll(ctx)
		n := p.reg.HealthyCount()
		if n == p.reg.Len() || !time.Now().Before(deadline) {
			return n
		}
		select {
		case <-ctx.Done():
			return p.reg.HealthyCount()
		case <-time.After(2 * time.Second):
		}
	}
}

func (p *Poller) refreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ref := range p.reg.Refs() {
		wg.Add(1)
		go func(ref WorkerRef) {
			defer wg.Done()
			p.Refresh(ctx, ref)
		}(ref)
	}
	wg.Wait()
}
