// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

// Package metrics registers Prometheus instrumentation for:
//   - Recommendation pipeline latency and outcomes
//   - Database query performance (DuckDB)
//   - API endpoint latency and throughput
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: personalized|similar|fallback
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	RecommendCandidatePool = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidate_pool_size",
			Help:    "Candidate pool size before scoring",
			Buckets: []float64{0, 5, 10, 25, 50, 75, 100},
		},
	)

	RecommendFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Total requests served by the popularity fallback",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	DBCircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_circuit_breaker_open",
			Help: "1 when the database circuit breaker is open",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests by method, endpoint and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Interaction Ingest Metrics
	InteractionsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_ingested_total",
			Help: "Total behavioral interaction records accepted",
		},
		[]string{"event"},
	)
)

// RecordRecommendation records one served recommendation request.
func RecordRecommendation(mode string, duration time.Duration, candidates int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RecommendRequestsTotal.WithLabelValues(mode, outcome).Inc()
	if err == nil {
		RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
		RecommendCandidatePool.Observe(float64(candidates))
	}
}

// RecordDBQuery records DuckDB query timing and errors.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
		return
	}
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetCircuitBreakerOpen flips the breaker gauge.
func SetCircuitBreakerOpen(open bool) {
	if open {
		DBCircuitBreakerState.Set(1)
		return
	}
	DBCircuitBreakerState.Set(0)
}
