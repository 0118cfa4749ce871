// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio_ai"

// Upload outcomes.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalidType  = "invalid_type"
	OutcomeTooLarge     = "too_large"
	OutcomeStorageError = "storage_error"
	OutcomeError        = "error"
)

// View results.
const (
	ViewFound    = "found"
	ViewNotFound = "not_found"
)

var (
	ResumeUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_uploads_total",
		Help:      "Resume uploads by outcome.",
	}, []string{"outcome"})

	ResumeParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_parses_total",
		Help:      "Portfolios created, by parse status.",
	}, []string{"status"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resume_parse_duration_seconds",
		Help:      "Latency of the LLM parse call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	})

	PortfolioViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portfolio_views_total",
		Help:      "Portfolio lookups by result.",
	}, []string{"result"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portfolio_cache_lookups_total",
		Help:      "Portfolio cache lookups by result.",
	}, []string{"result"})
)
