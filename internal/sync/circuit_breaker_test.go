// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// flakyAPI fails every call until the failure budget is spent.
type flakyAPI struct {
	failures int
	calls    int
}

func (f *flakyAPI) ListActivities(_ context.Context, _ time.Time, _, _ int) ([]json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return []json.RawMessage{json.RawMessage(`{"id":1}`)}, nil
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreakerClient(&flakyAPI{})

	items, err := cb.ListActivities(context.Background(), time.Time{}, 1, 200)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len(items) = %d, want 1", len(items))
	}
}

func TestCircuitBreakerPassesThroughFailure(t *testing.T) {
	cb := NewCircuitBreakerClient(&flakyAPI{failures: 1})

	_, err := cb.ListActivities(context.Background(), time.Time{}, 1, 200)
	if err == nil || err.Error() != "upstream unavailable" {
		t.Errorf("ListActivities() error = %v, want wrapped upstream error", err)
	}
}

func TestCircuitBreakerOpensAfterSustainedFailures(t *testing.T) {
	api := &flakyAPI{failures: 1000}
	cb := NewCircuitBreakerClient(api)

	// ReadyToTrip requires at least 5 observed requests at a 60% failure
	// rate; five straight failures must open the circuit
	for i := 0; i < 5; i++ {
		if _, err := cb.ListActivities(context.Background(), time.Time{}, 1, 200); err == nil {
			t.Fatalf("call %d succeeded, want failure", i+1)
		}
	}

	callsBefore := api.calls
	_, err := cb.ListActivities(context.Background(), time.Time{}, 1, 200)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error after sustained failures = %v, want gobreaker.ErrOpenState", err)
	}
	if api.calls != callsBefore {
		t.Errorf("open circuit forwarded a request to the upstream (calls %d -> %d)", callsBefore, api.calls)
	}
}

func TestCircuitBreakerStaysClosedBelowThreshold(t *testing.T) {
	// 2 failures in 6 requests is a 33% rate, below the 60% trip point
	api := &flakyAPI{failures: 2}
	cb := NewCircuitBreakerClient(api)

	for i := 0; i < 6; i++ {
		_, _ = cb.ListActivities(context.Background(), time.Time{}, 1, 200)
	}
	if _, err := cb.ListActivities(context.Background(), time.Time{}, 1, 200); err != nil {
		t.Errorf("ListActivities() error = %v, want circuit still closed", err)
	}
}

func TestBreakerStateMappings(t *testing.T) {
	states := []struct {
		state gobreaker.State
		str   string
		val   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, s := range states {
		if got := breakerStateString(s.state); got != s.str {
			t.Errorf("breakerStateString(%v) = %q, want %q", s.state, got, s.str)
		}
		if got := breakerStateFloat(s.state); got != s.val {
			t.Errorf("breakerStateFloat(%v) = %v, want %v", s.state, got, s.val)
		}
	}
}
