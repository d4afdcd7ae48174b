package test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/you/formulapool/internal/api"
	"github.com/you/formulapool/internal/cluster"
	"github.com/you/formulapool/internal/config"
	"github.com/you/formulapool/internal/engine"
	"github.com/you/formulapool/internal/server"
	"github.com/you/formulapool/internal/worker"
	"github.com/you/formulapool/internal/workerapi"
)

// tinyPNG is a 1x1 transparent PNG.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

type clusterFixture struct {
	Server *httptest.Server
	Reg    *cluster.Registry
	Stats  *cluster.Stats
}

// startCluster boots one real worker in-process and a balancer routing to it,
// probes the worker once so it is healthy, and returns the running surface.
func startCluster(t *testing.T, eng engine.Engine) *clusterFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	addr, err := worker.StartServer(ctx, "127.0.0.1:0", eng)
	if err != nil {
		t.Fatalf("start worker: %v", err)
	}
	worker.SetWorkerInfo("worker-1", "test-model")
	worker.SetEngineReady(true)

	refs := []cluster.WorkerRef{{ID: "worker-1", URL: "http://" + addr}}
	reg := cluster.NewRegistry(refs)
	stats := cluster.NewStats(refs)
	client := workerapi.NewClient()
	poller := cluster.NewPoller(reg, client, time.Second, time.Second)
	fwd := cluster.NewForwarder(reg, stats, cluster.LeastLoaded{}, client, poller, 5*time.Second)

	handler := server.New(config.ServerConfig{}, reg, stats, fwd, api.VersionInfo{Version: "test"})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	poller.Refresh(ctx, refs[0])
	if reg.HealthyCount() != 1 {
		t.Fatalf("worker not healthy after probe")
	}
	return &clusterFixture{Server: srv, Reg: reg, Stats: stats}
}
