package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version, commit and AI mode.",
	},
	[]string{"version", "commit", "ai_mode"}, // ai_mode: 'dummy', 'live'
)

func SetBuildInfo(version, commit, aiMode string) {
	buildInfo.WithLabelValues(version, commit, norm(aiMode)).Set(1)
}
