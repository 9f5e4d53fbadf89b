// Package metrics exposes the engine's operational counters on the
// Prometheus default registry, served by the metrics router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ComparisonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forecast_comparisons_total",
		Help: "Comparisons run, by metric and winning side.",
	}, []string{"metric", "winning"})

	ScoringErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forecast_scoring_errors_total",
		Help: "Requests rejected by engine validation, by kind.",
	}, []string{"kind"})

	InfiniteScoresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_infinite_scores_total",
		Help: "Scores that came back +Inf (ruled-out events, mass edge cases).",
	})

	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecast_scoring_duration_seconds",
		Help:    "Wall time of a single scoring or comparison call.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
	})

	PrunedComparisonsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_pruned_comparisons_total",
		Help: "Comparison records removed by the retention sweeper.",
	})
)
