package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/you/formulapool/internal/cluster"
	"github.com/you/formulapool/internal/engine"
)

func TestE2EPredictDemo(t *testing.T) {
	fx := startCluster(t, engine.Demo{})

	body := []byte(`{"image":"` + tinyPNG + `"}`)
	resp, err := http.Post(fx.Server.URL+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var v map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v["ok"] != true {
		t.Fatalf("expected ok=true, got %v", v)
	}
	if v["latex"] != "x^2 + 2x + 1" {
		t.Fatalf("latex = %v", v["latex"])
	}
	if v["routed_to"] != "worker-1" {
		t.Fatalf("routed_to = %v", v["routed_to"])
	}
	if _, ok := v["balancer_time_seconds"]; !ok {
		t.Fatalf("missing balancer_time_seconds")
	}

	resp, err = http.Get(fx.Server.URL + "/cluster/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var cs cluster.ClusterStatus
	if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if cs.HealthyWorkers != 1 || cs.TotalWorkers != 1 {
		t.Fatalf("healthy=%d total=%d", cs.HealthyWorkers, cs.TotalWorkers)
	}
	if cs.Stats.TotalRequests != 1 || cs.Stats.SuccessfulRequests != 1 {
		t.Fatalf("stats = %+v", cs.Stats)
	}
	if cs.Stats.RequestsPerWorker["worker-1"] != 1 {
		t.Fatalf("per-worker count = %v", cs.Stats.RequestsPerWorker)
	}
}

func TestE2ERoutes(t *testing.T) {
	fx := startCluster(t, engine.Demo{})

	for _, path := range []string{"/health", "/cluster/status", "/version", "/metrics"} {
		resp, err := http.Get(fx.Server.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(fx.Server.URL + "/predict")
	if err != nil {
		t.Fatalf("get /predict: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /predict, got %d", resp.StatusCode)
	}
}
