package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(contextOptimizations, contextSelectedItems) }

var (
	contextOptimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "context_optimizations_total",
			Help: "Context window builds, labeled by whether history was trimmed.",
		},
		[]string{"trimmed"},
	)

	contextSelectedItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "context_selected_items",
			Help:    "Number of history items selected into the context window.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 20, 50},
		},
	)
)

func ObserveContextOptimization(selected int, trimmed bool) {
	contextOptimizations.WithLabelValues(strconv.FormatBool(trimmed)).Inc()
	contextSelectedItems.Observe(float64(selected))
}
