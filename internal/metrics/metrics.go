// Package metrics defines the Prometheus instruments exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed workbook analyses by status.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_analyses_total",
		Help: "Workbook analyses performed, by final status.",
	}, []string{"status"})

	// AIFallbacks counts times an AI stage degraded to its
	// deterministic fallback.
	AIFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_ai_fallbacks_total",
		Help: "AI stages that fell back to deterministic output.",
	}, []string{"stage"})

	// AnalysisDuration observes end-to-end analysis latency.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsight_analysis_duration_seconds",
		Help:    "End-to-end analysis duration.",
		Buckets: prometheus.DefBuckets,
	})
)
