package worker

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	readyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "formulapool_worker_ready",
		Help: "Whether the recognition engine can take work (1 or 0)",
	})
	busyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "formulapool_worker_busy",
		Help: "Whether a job is currently in flight (1 or 0)",
	})
	jobsStartedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "formulapool_worker_jobs_started_total",
		Help: "Total number of jobs started",
	})
	jobsSucceededCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "formulapool_worker_jobs_succeeded_total",
		Help: "Total number of jobs that succeeded",
	})
	jobsFailedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "formulapool_worker_jobs_failed_total",
		Help: "Total number of jobs that failed",
	})
	jobDurationHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "formulapool_worker_job_duration_seconds",
		Help:    "Duration of jobs in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// metricsHandler serves the worker's own collectors on a private registry so
// the endpoint carries no unrelated process metrics.
func metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		readyGauge,
		busyGauge,
		jobsStartedCounter,
		jobsSucceededCounter,
		jobsFailedCounter,
		jobDurationHist,
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func setReady(v bool) {
	if v {
		readyGauge.Set(1)
	} else {
		readyGauge.Set(0)
	}
}

func setBusy(v bool) {
	if v {
		busyGauge.Set(1)
	} else {
		busyGauge.Set(0)
	}
}

// JobStarted increments the started jobs counter.
func JobStarted() {
	jobsStartedCounter.Inc()
}

// JobCompleted records the job duration and success or failure.
func JobCompleted(success bool, d time.Duration) {
	if success {
		jobsSucceededCounter.Inc()
	} else {
		jobsFailedCounter.Inc()
	}
	jobDurationHist.Observe(d.Seconds())
}
