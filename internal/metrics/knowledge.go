package metrics

import "github.com/prometheus/client_golang/prometheus"

// Knowledge and routing Prometheus metrics.
var (
	KnowledgeRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "knowledge_records",
			Help:      "Number of loaded knowledge records by kind",
		},
		[]string{"kind"},
	)

	KnowledgeSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "knowledge_search_total",
			Help:      "Internal knowledge searches by outcome",
		},
		[]string{"outcome"}, // "matched" / "prompt" / "miss"
	)

	RouteDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "route_decisions_total",
			Help:      "Routing decisions by source usage",
		},
		[]string{"internal", "external"},
	)

	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "replies_total",
			Help:      "Composed replies by contributing sources",
		},
		[]string{"sources"}, // "internal", "external", "internal+external", "fallback", "apology"
	)
)

var knowledgeMetricsRegistered bool

// RegisterKnowledgeMetrics registers knowledge, routing and reply metrics. Must be called once from main.
func RegisterKnowledgeMetrics() {
	if knowledgeMetricsRegistered {
		return
	}
	prometheus.MustRegister(KnowledgeRecords)
	prometheus.MustRegister(KnowledgeSearchTotal)
	prometheus.MustRegister(RouteDecisionsTotal)
	prometheus.MustRegister(RepliesTotal)
	knowledgeMetricsRegistered = true
}
