package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobsSubmittedTotal, jobsProcessedTotal, jobDurationMs, workerPanicsTotal, workerRejectedTotal)
}

var (
	jobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_submitted_total",
			Help: "Total number of jobs accepted, labeled by kind.",
		},
		[]string{"kind"}, // 'message', 'file'
	)

	jobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of jobs processed, labeled by kind and final status.",
		},
		[]string{"kind", "status"}, // 'done', 'error', 'discarded'
	)

	jobDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_duration_ms",
			Help:    "Time from processing start to terminal status, in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"kind"},
	)

	workerPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_panics_total",
			Help: "Panics recovered inside background tasks.",
		},
	)

	workerRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_rejected_total",
			Help: "Tasks rejected because the worker queue was full.",
		},
	)
)

func IncJobSubmitted(kind string) {
	jobsSubmittedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncJobProcessed(kind, status string) {
	jobsProcessedTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func ObserveJobDuration(kind string, d time.Duration) {
	jobDurationMs.WithLabelValues(norm(kind)).Observe(float64(d.Milliseconds()))
}

func IncWorkerPanic() {
	workerPanicsTotal.Inc()
}

func IncWorkerRejected() {
	workerRejectedTotal.Inc()
}
