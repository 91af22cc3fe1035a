package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric of the service.
const Namespace = "hybridchat"

// Grounded completion Prometheus metrics.
var (
	ExternalRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "external_runs_total",
			Help:      "Total number of delegated external runs by outcome",
		},
		[]string{"outcome"},
	)

	ExternalRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "external_run_duration_seconds",
			Help:      "Time from submission to the end of a delegated run",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 30, 60},
		},
		[]string{"outcome"},
	)

	ExternalPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "external_polls_total",
			Help:      "Total number of run status polls by observed status",
		},
		[]string{"status"}, // run status or "error"
	)

	GroundedAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "grounded_api_requests_total",
			Help:      "Total number of grounded completion API requests",
		},
		[]string{"operation", "status"}, // status: "success" / "error"
	)

	GroundedAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "grounded_api_request_duration_seconds",
			Help:      "Grounded completion API request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	RunCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "run_cache_total",
			Help:      "Run cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var groundingMetricsRegistered bool

// RegisterGroundingMetrics registers Prometheus grounding metrics. Must be called once from main.
func RegisterGroundingMetrics() {
	if groundingMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExternalRunsTotal)
	prometheus.MustRegister(ExternalRunDuration)
	prometheus.MustRegister(ExternalPollsTotal)
	prometheus.MustRegister(GroundedAPIRequestsTotal)
	prometheus.MustRegister(GroundedAPIRequestDuration)
	prometheus.MustRegister(RunCacheTotal)
	groundingMetricsRegistered = true
}
