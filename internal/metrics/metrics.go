// Package metrics exposes Prometheus metrics for the catalog services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolveRequests counts resolution calls by outcome ("ok", "empty").
	ResolveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltlens_resolve_requests_total",
			Help: "Total number of cascade resolution calls",
		},
		[]string{"outcome"},
	)

	// StageCandidates counts candidates contributed per cascade stage.
	StageCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltlens_stage_candidates_total",
			Help: "Candidates contributed by each resolution stage",
		},
		[]string{"stage"},
	)

	// StageFailures counts per-stage failures that were degraded to an
	// empty contribution.
	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltlens_stage_failures_total",
			Help: "Resolution stage failures downgraded to empty results",
		},
		[]string{"stage"},
	)

	// CatalogScanDuration tracks full-catalog scan latency.
	CatalogScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voltlens_catalog_scan_duration_seconds",
			Help:    "Time taken for full catalog scans",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// CategorizeRequests counts categorization calls by outcome.
	CategorizeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltlens_categorize_requests_total",
			Help: "Total number of component categorization calls",
		},
		[]string{"outcome"},
	)
)
