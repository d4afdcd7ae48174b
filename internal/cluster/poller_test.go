package cluster

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/you/formulapool/internal/workerapi"
)

type statusFunc func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error)

func (f statusFunc) Status(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
	return f(ctx, baseURL)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPollerRefresh(t *testing.T) {
	reg := NewRegistry(testRefs(1))
	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		return workerapi.StatusResponse{Ready: true, Busy: true, RequestsProcessed: 5}, nil
	})
	p := NewPoller(reg, client, time.Hour, time.Second)

	p.Refresh(context.Background(), reg.Refs()[0])
	w := reg.Snapshot()[0]
	if !w.Healthy || !w.Busy || w.RequestsProcessed != 5 {
		t.Fatalf("unexpected state after refresh: %+v", w.WorkerState)
	}
}

func TestPollerRefreshFailureDegrades(t *testing.T) {
	reg := NewRegistry(testRefs(1))
	ref := reg.Refs()[0]
	reg.UpdateProbe(ref.ID, true, true, 9)

	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		return workerapi.StatusResponse{}, errors.New("connection refused")
	})
	p := NewPoller(reg, client, time.Hour, time.Second)
	p.Refresh(context.Background(), ref)

	w := reg.Snapshot()[0]
	if w.Healthy || w.Busy {
		t.Fatalf("failed probe left worker healthy or busy: %+v", w.WorkerState)
	}
	if w.RequestsProcessed != 9 {
		t.Fatalf("failed probe dropped last reported count: %d", w.RequestsProcessed)
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	reg := NewRegistry(testRefs(2))
	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		return workerapi.StatusResponse{Ready: true}, nil
	})
	p := NewPoller(reg, client, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return reg.HealthyCount() == 2 }, "workers never became healthy")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPollerWorkersProbedIndependently(t *testing.T) {
	reg := NewRegistry(testRefs(2))
	slow := reg.Refs()[0].URL
	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		if baseURL == slow {
			<-ctx.Done()
			return workerapi.StatusResponse{}, ctx.Err()
		}
		return workerapi.StatusResponse{Ready: true}, nil
	})
	p := NewPoller(reg, client, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// The hung probe on worker-1 must not delay worker-2's updates.
	waitFor(t, func() bool { return reg.Snapshot()[1].Healthy }, "fast worker blocked behind slow one")
	if reg.Snapshot()[0].Healthy {
		t.Fatal("slow worker reported healthy without a completed probe")
	}
}

func TestPollerAwaitReady(t *testing.T) {
	reg := NewRegistry(testRefs(2))
	var calls atomic.Int64
	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		calls.Add(1)
		return workerapi.StatusResponse{Ready: true}, nil
	})
	p := NewPoller(reg, client, time.Hour, time.Second)

	if n := p.AwaitReady(context.Background(), time.Minute); n != 2 {
		t.Fatalf("AwaitReady = %d, want 2", n)
	}
	if calls.Load() != 2 {
		t.Fatalf("AwaitReady probed %d times, want one pass over 2 workers", calls.Load())
	}
}

func TestPollerAwaitReadyGivesUpAfterWindow(t *testing.T) {
	reg := NewRegistry(testRefs(2))
	down := reg.Refs()[1].URL
	client := statusFunc(func(ctx context.Context, baseURL string) (workerapi.StatusResponse, error) {
		if baseURL == down {
			return workerapi.StatusResponse{}, errors.New("connection refused")
		}
		return workerapi.StatusResponse{Ready: true}, nil
	})
	p := NewPoller(reg, client, time.Hour, time.Second)

	if n := p.AwaitReady(context.Background(), 0); n != 1 {
		t.Fatalf("AwaitReady = %d, want 1 healthy after the window", n)
	}
}
