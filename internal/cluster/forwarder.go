package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/you/formulapool/internal/logx"
	"github.com/you/formulapool/internal/metrics"
	"github.com/you/formulapool/internal/workerapi"
)

// Job is one inbound recognition request.
type Job struct {
	Image    string
	Deadline time.Duration
}

// ErrNoCapacity is returned when no healthy worker exists to take a job.
var ErrNoCapacity = errors.New("no healthy worker available")

// TimeoutError reports a job that exceeded its deadline on a worker.
type TimeoutError struct {
	WorkerID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out on %s", e.WorkerID)
}

// RejectionError carries a worker's own non-2xx reply, verbatim, so callers
// can pass it through unchanged.
type RejectionError struct {
	WorkerID   string
	StatusCode int
	Body       []byte
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("worker %s rejected job with status %d", e.WorkerID, e.StatusCode)
}

// TransportError reports a network-level failure reaching a worker, or a
// reply that could not be decoded.
type TransportError struct {
	WorkerID string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("worker %s: %v", e.WorkerID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// JobResult is a successful forward: the worker's payload augmented with
// routing information.
type JobResult struct {
	WorkerID   string
	StatusCode int
	Payload    map[string]interface{}
	Elapsed    time.Duration
}

// PredictClient submits jobs to workers.
type PredictClient interface {
	Predict(ctx context.Context, baseURL string, req workerapi.PredictRequest) (*workerapi.PredictResult, error)
}

// Refresher re-probes one worker after a job finishes so the advisory busy
// flag is corrected sooner than the next poll cycle.
type Refresher interface {
	Refresh(ctx context.Context, ref WorkerRef)
}

const postJobProbeTimeout = 2 * time.Second

// Forwarder carries one job end to end: claim a worker, send the job under a
// deadline, classify the outcome, update the counters, re-probe the worker.
// It owns every mutation of Stats.
type Forwarder struct {
	reg     *Registry
	stats   *Stats
	sched   Scheduler
	client  PredictClient
	refresh Refresher
	timeout time.Duration
}

func NewForwarder(reg *Registry, stats *Stats, sched Scheduler, client PredictClient, refresh Refresher, timeout time.Duration) *Forwarder {
	return &Forwarder{reg: reg, stats: stats, sched: sched, client: client, refresh: refresh, timeout: timeout}
}

// Forward sends one job to the best available worker. Failures are reported
// through the error taxonomy above; a job is never retried on another worker.
func (f *Forwarder) Forward(ctx context.Context, job Job) (*JobResult, error) {
	f.stats.RecordRequest()
	ref, idx, ok := f.reg.Claim(f.sched, f.stats.Completed())
	if !ok {
		f.stats.RecordFailure()
		metrics.RecordJob("no_capacity")
		return nil, ErrNoCapacity
	}

	jobID := uuid.NewString()
	reqID := chiMiddleware.GetReqID(ctx)
	logx.Log.Info().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Msg("dispatch")

	defer func() {
		rctx, cancel := context.WithTimeout(context.Background(), postJobProbeTimeout)
		defer cancel()
		f.refresh.Refresh(rctx, ref)
	}()

	deadline := job.Deadline
	if deadline <= 0 {
		deadline = f.timeout
	}
	cctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	res, err := f.client.Predict(cctx, ref.URL, workerapi.PredictRequest{Image: job.Image})
	elapsed := time.Since(start)
	metrics.ObserveJobDuration(ref.ID, elapsed)
	if err != nil {
		f.stats.RecordFailure()
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordJob("timeout")
			metrics.RecordWorkerJob(ref.ID, "timeout")
			logx.Log.Warn().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Dur("elapsed", elapsed).Msg("job timed out")
			return nil, &TimeoutError{WorkerID: ref.ID}
		}
		metrics.RecordJob("error")
		metrics.RecordWorkerJob(ref.ID, "error")
		logx.Log.Error().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Err(err).Msg("job failed")
		return nil, &TransportError{WorkerID: ref.ID, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		f.stats.RecordFailure()
		metrics.RecordJob("rejected")
		metrics.RecordWorkerJob(ref.ID, "rejected")
		logx.Log.Debug().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Int("status", res.StatusCode).Msg("job rejected by worker")
		return nil, &RejectionError{WorkerID: ref.ID, StatusCode: res.StatusCode, Body: res.Body}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		f.stats.RecordFailure()
		metrics.RecordJob("error")
		metrics.RecordWorkerJob(ref.ID, "error")
		logx.Log.Error().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Err(err).Msg("bad worker response")
		return nil, &TransportError{WorkerID: ref.ID, Err: fmt.Errorf("decode worker response: %w", err)}
	}
	f.stats.RecordSuccess(idx)
	metrics.RecordJob("success")
	metrics.RecordWorkerJob(ref.ID, "success")
	payload["routed_to"] = ref.ID
	payload["balancer_time_seconds"] = math.Round(elapsed.Seconds()*1000) / 1000
	logx.Log.Info().Str("request_id", reqID).Str("job_id", jobID).Str("worker_id", ref.ID).Dur("elapsed", elapsed).Msg("complete")
	return &JobResult{WorkerID: ref.ID, StatusCode: res.StatusCode, Payload: payload, Elapsed: elapsed}, nil
}
