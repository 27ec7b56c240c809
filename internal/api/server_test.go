// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/models"
	syncengine "github.com/franchyze923/strava-db-syncer/internal/sync"
)

type fakeController struct {
	triggerErr error
	triggered  int
	status     syncengine.Status
}

func (f *fakeController) TriggerSync() error {
	f.triggered++
	return f.triggerErr
}

func (f *fakeController) Status() syncengine.Status { return f.status }

type fakeStore struct {
	state    models.SyncState
	count    int64
	stateErr error
	pingErr  error
}

func (f *fakeStore) SyncState(_ context.Context) (models.SyncState, error) {
	return f.state, f.stateErr
}

func (f *fakeStore) CountActivities(_ context.Context) (int64, error) { return f.count, nil }

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

func newTestServer(controller *fakeController, store *fakeStore) *Server {
	cfg := &config.ServerConfig{
		Host:    "127.0.0.1",
		Port:    0,
		Timeout: 5 * time.Second,
	}
	return NewServer(cfg, controller, store)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(&fakeController{}, &fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("database down", func(t *testing.T) {
		s := newTestServer(&fakeController{}, &fakeStore{pingErr: fmt.Errorf("no reachable servers")})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestStatus(t *testing.T) {
	checkpoint := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	controller := &fakeController{status: syncengine.Status{
		State:            syncengine.StateIdle,
		Running:          true,
		CyclesCompleted:  7,
		LastCycleRecords: 42,
	}}
	store := &fakeStore{
		state: models.SyncState{ID: models.SyncStateID, LastSyncedTime: checkpoint},
		count: 4500,
	}
	s := newTestServer(controller, store)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Sync.Running || resp.Sync.CyclesCompleted != 7 {
		t.Errorf("sync status = %+v", resp.Sync)
	}
	if !resp.Checkpoint.LastSyncedTime.Equal(checkpoint) {
		t.Errorf("checkpoint = %v, want %v", resp.Checkpoint.LastSyncedTime, checkpoint)
	}
	if resp.Activities != 4500 {
		t.Errorf("activities = %d, want 4500", resp.Activities)
	}
}

func TestStatusStoreFailure(t *testing.T) {
	s := newTestServer(&fakeController{}, &fakeStore{stateErr: fmt.Errorf("connection reset")})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestTriggerSync(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		controller := &fakeController{}
		s := newTestServer(controller, &fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rec.Code)
		}
		if controller.triggered != 1 {
			t.Errorf("triggered = %d, want 1", controller.triggered)
		}
	})

	t.Run("already pending", func(t *testing.T) {
		controller := &fakeController{triggerErr: fmt.Errorf("a sync is already pending")}
		s := newTestServer(controller, &fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Error != "a sync is already pending" {
			t.Errorf("error = %q", resp.Error)
		}
	})

	t.Run("get not allowed", func(t *testing.T) {
		s := newTestServer(&fakeController{}, &fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeController{}, &fakeStore{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(&fakeController{}, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}
