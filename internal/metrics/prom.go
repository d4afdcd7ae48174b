package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "formulapool_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	jobRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formulapool_requests_total",
			Help: "Number of predict requests handled by the balancer",
		},
		[]string{"outcome"},
	)

	workerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formulapool_worker_requests_total",
			Help: "Number of jobs forwarded per worker",
		},
		[]string{"worker_id", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formulapool_request_duration_seconds",
			Help:    "Duration of forwarded jobs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"worker_id"},
	)

	workersTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "formulapool_workers_total",
		Help: "Number of workers in the pool",
	})

	workersHealthy = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "formulapool_workers_healthy",
		Help: "Number of workers currently healthy",
	})

	workerUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "formulapool_worker_up",
			Help: "Whether a worker answered its last probe (1 or 0)",
		},
		[]string{"worker_id"},
	)

	workerBusy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "formulapool_worker_busy",
			Help: "Whether a worker reported itself busy on its last probe (1 or 0)",
		},
		[]string{"worker_id"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, jobRequests, workerRequests, requestDuration, workersTotal, workersHealthy, workerUp, workerBusy)
}

// SetServerBuildInfo sets the build info metric for the balancer.
func SetServerBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordJob increments the request counter for one outcome.
func RecordJob(outcome string) {
	jobRequests.WithLabelValues(outcome).Inc()
}

// RecordWorkerJob increments the per-worker job counter.
func RecordWorkerJob(workerID, outcome string) {
	workerRequests.WithLabelValues(workerID, outcome).Inc()
}

// ObserveJobDuration records how long a forwarded job took.
func ObserveJobDuration(workerID string, d time.Duration) {
	requestDuration.WithLabelValues(workerID).Observe(d.Seconds())
}

// SetPoolSize records the fixed size of the worker pool.
func SetPoolSize(n int) {
	workersTotal.Set(float64(n))
}

// SetHealthyWorkers records how many workers are currently healthy.
func SetHealthyWorkers(n int) {
	workersHealthy.Set(float64(n))
}

// SetWorkerProbe records the result of a worker's last probe.
func SetWorkerProbe(workerID string, up, busy bool) {
	v := 0.0
	if up {
		v = 1
	}
	workerUp.WithLabelValues(workerID).Set(v)
	b := 0.0
	if busy {
		b = 1
	}
	workerBusy.WithLabelValues(workerID).Set(b)
}
