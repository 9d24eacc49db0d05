package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// GenerationDuration tracks LLM latency per provider.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rmd_generation_duration_seconds",
		Help:    "Time spent waiting on an LLM provider.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	// ProviderInvocations counts adapter calls by provider and result (ok, error).
	ProviderInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_provider_invocations_total",
		Help: "LLM adapter invocations by provider and result.",
	}, []string{"provider", "result"})

	// ProviderFallbacks counts backup attempts after a primary failure.
	ProviderFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rmd_provider_fallbacks_total",
		Help: "Backup provider attempts after a primary failure.",
	})

	// NormalizeOutcomes counts normalizer results: direct, patched, repaired, unparsable.
	NormalizeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_normalize_total",
		Help: "Model response normalization outcomes.",
	}, []string{"outcome"})

	// ShapeMismatches counts normalized results missing the expected fields.
	ShapeMismatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_result_shape_mismatch_total",
		Help: "Normalized results that did not match the expected shape.",
	}, []string{"kind"})

	// CacheLookups counts result cache reads by outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_cache_lookups_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"outcome"})

	// QuotaDecisions counts quota checks by decision (allowed, rejected, fail_open).
	QuotaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmd_quota_decisions_total",
		Help: "Quota guard decisions.",
	}, []string{"decision"})

	// UpstreamItems tracks how many rated records a Douban fetch returned.
	UpstreamItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rmd_upstream_items",
		Help:    "Rated records returned per Douban fetch.",
		Buckets: []float64{0, 10, 30, 50, 75, 100},
	})
)
