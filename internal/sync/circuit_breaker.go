// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package sync

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/metrics"
)

// CircuitBreakerClient wraps a StravaAPI with the circuit breaker pattern,
// preventing a sustained Strava outage from burning the rate-limit budget
// on requests that will fail anyway.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should exercise the wrapped client directly rather than mocking
// breaker timing.
type CircuitBreakerClient struct {
	api  StravaAPI
	cb   *gobreaker.CircuitBreaker[[]json.RawMessage]
	name string
}

// NewCircuitBreakerClient wraps api with a circuit breaker:
//   - max 1 request in half-open state (single sequential worker)
//   - 1 minute measurement window in closed state
//   - 2 minute open period before attempting recovery
//   - opens at a 60% failure rate with at least 5 observed requests
func NewCircuitBreakerClient(api StravaAPI) *CircuitBreakerClient {
	cbName := "strava-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]json.RawMessage](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := breakerStateString(from), breakerStateString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{api: api, cb: cb, name: cbName}
}

// ListActivities executes the wrapped call under circuit breaker protection.
func (c *CircuitBreakerClient) ListActivities(ctx context.Context, after time.Time, page, perPage int) ([]json.RawMessage, error) {
	items, err := c.cb.Execute(func() ([]json.RawMessage, error) {
		return c.api.ListActivities(ctx, after, page, perPage)
	})
	if err != nil {
		outcome := "failure"
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			outcome = "rejected"
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, outcome).Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return items, nil
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
