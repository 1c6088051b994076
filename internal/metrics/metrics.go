// Package metrics exposes the Prometheus instruments shared across the
// pipeline. Everything registers on the default registry at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FetchAttempts counts data source calls, labelled by provider.
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titanquant_fetch_attempts_total",
			Help: "Number of history fetch attempts per data source.",
		},
		[]string{"source"},
	)

	// FetchFailures counts data source calls that returned an error or
	// an unusable batch.
	FetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titanquant_fetch_failures_total",
			Help: "Number of failed history fetches per data source.",
		},
		[]string{"source"},
	)

	// Analyses counts completed analysis runs by outcome label.
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "titanquant_analyses_total",
			Help: "Number of analysis runs by resulting signal.",
		},
		[]string{"signal"},
	)

	// AnalysisDuration tracks end to end analysis latency.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "titanquant_analysis_duration_seconds",
			Help:    "Wall time of a full analysis run.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		FetchAttempts,
		FetchFailures,
		Analyses,
		AnalysisDuration,
	)
}
