// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus instrumentation for Curator:
// event-log write throughput, DuckDB query latency, scorer latency, PaC
// evaluation timing and HTTP endpoint metrics. Collectors register via
// promauto and are exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Event log metrics
	ImpressionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_impressions_recorded_total",
			Help: "Total number of impressions written to the event log",
		},
		[]string{"engine"},
	)

	EngagementsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_engagements_recorded_total",
			Help: "Total number of engagements written to the event log",
		},
	)

	EngagementsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_engagements_rejected_total",
			Help: "Total number of engagements rejected before insert",
		},
		[]string{"reason"}, // "not_found", "invalid_argument"
	)

	// Scorer metrics
	ScoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_score_duration_seconds",
			Help:    "Duration of scorer invocations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	AutoFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_auto_fallbacks_total",
			Help: "Times the auto selector fell back from neural to baseline",
		},
	)

	// Evaluation metrics
	PaCEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_pac_evaluations_total",
			Help: "Total number of PaC evaluations performed",
		},
	)

	PaCEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curator_pac_evaluation_duration_seconds",
			Help:    "Duration of PaC evaluations in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
