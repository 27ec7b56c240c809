// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the sync engine:
// - Cycle outcomes and durations
// - Strava API client behavior (requests, rate-limit waits, token refreshes)
// - Upsert throughput and checkpoint position
// - Circuit breaker state

var (
	// Sync cycle metrics

	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_sync_cycles_total",
			Help: "Total number of sync cycles by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strava_sync_cycle_duration_seconds",
			Help:    "Duration of full sync cycles in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_sync_errors_total",
			Help: "Total number of sync errors by kind",
		},
		[]string{"kind"}, // "auth", "rate_limit", "network", "storage", "malformed_record"
	)

	SyncPageSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strava_sync_page_size",
			Help:    "Number of activities received per page",
			Buckets: []float64{0, 1, 10, 25, 50, 100, 150, 200},
		},
	)

	ActivitiesUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strava_activities_upserted_total",
			Help: "Total number of activity documents written (insert or replace)",
		},
	)

	CheckpointTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strava_sync_checkpoint_timestamp_seconds",
			Help: "Unix timestamp of the durable last_synced_time checkpoint",
		},
	)

	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strava_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last fully successful sync cycle",
		},
	)

	// Strava API client metrics

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_api_requests_total",
			Help: "Total Strava API requests by endpoint and status class",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strava_api_request_duration_seconds",
			Help:    "Duration of Strava API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strava_api_rate_limit_wait_seconds",
			Help:    "Time spent waiting on HTTP 429 backoff",
			Buckets: []float64{1, 2, 5, 15, 30, 60, 120, 300, 900},
		},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_token_refreshes_total",
			Help: "Total OAuth token refresh attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strava_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordCycle records the outcome of one sync cycle.
func RecordCycle(duration time.Duration, err error) {
	if err != nil {
		SyncCyclesTotal.WithLabelValues("failure").Inc()
		return
	}
	SyncCyclesTotal.WithLabelValues("success").Inc()
	SyncCycleDuration.Observe(duration.Seconds())
	LastSuccessTimestamp.SetToCurrentTime()
}

// RecordCheckpoint publishes the checkpoint position after a durable advance.
func RecordCheckpoint(t time.Time) {
	if !t.IsZero() {
		CheckpointTimestamp.Set(float64(t.Unix()))
	}
}
