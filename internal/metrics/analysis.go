package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Analysis and extraction Prometheus metrics.
var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of resume analyses",
		},
		[]string{"status", "verdict"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	AnalysisScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_score",
			Help:      "Distribution of analysis scores by component",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"component"}, // "lexical" / "semantic" / "final"
	)

	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Document text extraction duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"format"},
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of document extractions",
		},
		[]string{"format", "status"},
	)
)

var registerAnalysis sync.Once

// RegisterAnalysisMetrics registers analysis and extraction metrics. Repeated calls are no-ops.
func RegisterAnalysisMetrics() {
	registerAnalysis.Do(func() {
		prometheus.MustRegister(AnalysesTotal, AnalysisDuration, AnalysisScore, ExtractionDuration, ExtractionsTotal)
	})
}
