package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiProviderAttempts,
		aiProviderLatencyMs,
		aiFallbackExhausted,
		aiResponses,
	)
}

var (
	aiProviderAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_attempts_total",
			Help: "Provider call attempts labeled by provider and outcome.",
		},
		[]string{"provider", "outcome"}, // success | error | timeout
	)

	aiProviderLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_provider_latency_ms",
			Help:    "Provider call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "success"},
	)

	aiFallbackExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_fallback_exhausted_total",
			Help: "Times every configured provider failed and the apology text was used.",
		},
	)

	aiResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_responses_total",
			Help: "Responses produced, labeled by request kind and source (provider name, dummy, fallback).",
		},
		[]string{"kind", "source"},
	)
)

func ObserveProviderAttempt(provider, outcome string, latency time.Duration) {
	aiProviderAttempts.WithLabelValues(norm(provider), norm(outcome)).Inc()
	success := "false"
	if outcome == "success" {
		success = "true"
	}
	aiProviderLatencyMs.WithLabelValues(norm(provider), success).Observe(float64(latency.Milliseconds()))
}

func IncFallbackExhausted() {
	aiFallbackExhausted.Inc()
}

func IncAIResponse(kind, source string) {
	aiResponses.WithLabelValues(norm(kind), norm(source)).Inc()
}
