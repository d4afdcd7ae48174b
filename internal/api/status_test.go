package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/you/formulapool/internal/cluster"
)

func statusFixtures() (*cluster.Registry, *cluster.Stats) {
	refs := []cluster.WorkerRef{
		{ID: "worker-1", URL: "http://localhost:5556"},
		{ID: "worker-2", URL: "http://localhost:5557"},
	}
	reg := cluster.NewRegistry(refs)
	return reg, cluster.NewStats(refs)
}

func TestHealthHandler(t *testing.T) {
	reg, _ := statusFixtures()

	rr := httptest.NewRecorder()
	HealthHandler(reg)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Mode != "cluster" || resp.HealthyWorkers != 0 || resp.TotalWorkers != 2 {
		t.Fatalf("bad response %+v", resp)
	}

	reg.UpdateProbe("worker-1", true, false, 0)
	rr = httptest.NewRecorder()
	HealthHandler(reg)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" || resp.HealthyWorkers != 1 {
		t.Fatalf("bad response %+v", resp)
	}
}

func TestGetStatus(t *testing.T) {
	reg, stats := statusFixtures()
	reg.UpdateProbe("worker-1", true, true, 3)
	stats.RecordRequest()
	stats.RecordSuccess(0)

	h := &StatusHandler{Registry: reg, Stats: stats}
	rr := httptest.NewRecorder()
	h.GetStatus(rr, httptest.NewRequest(http.MethodGet, "/cluster/status", nil))

	var resp cluster.ClusterStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalWorkers != 2 || resp.HealthyWorkers != 1 {
		t.Fatalf("bad response %+v", resp)
	}
	if resp.Workers[0].ID != "worker-1" || !resp.Workers[0].Busy {
		t.Fatalf("bad workers %+v", resp.Workers)
	}
	if resp.Stats.TotalRequests != 1 || resp.Stats.RequestsPerWorker["worker-2"] != 0 {
		t.Fatalf("bad stats %+v", resp.Stats)
	}
}

func TestGetStatusStream(t *testing.T) {
	reg, stats := statusFixtures()
	h := &StatusHandler{Registry: reg, Stats: stats}

	r := chi.NewRouter()
	r.Get("/cluster/status/stream", h.GetStatusStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/cluster/status/stream")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("not an SSE frame: %q", line)
	}
	var st cluster.ClusterStatus
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &st); err != nil {
		t.Fatalf("frame payload: %v", err)
	}
	if st.TotalWorkers != 2 {
		t.Fatalf("bad frame %+v", st)
	}
}

func TestVersionHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	VersionHandler(VersionInfo{Version: "1.2.3", BuildSHA: "abc", BuildDate: "2025-01-01"})(rr, httptest.NewRequest(http.MethodGet, "/version", nil))
	var resp VersionInfo
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "1.2.3" || resp.BuildSHA != "abc" {
		t.Fatalf("bad response %+v", resp)
	}
}
