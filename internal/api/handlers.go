// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/models"
	syncengine "github.com/franchyze923/strava-db-syncer/internal/sync"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Sync       syncengine.Status `json:"sync"`
	Checkpoint models.SyncState  `json:"checkpoint"`
	Activities int64             `json:"activities"`
	Time       time.Time         `json:"time"`
}

// errorResponse is the body of any non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode JSON response")
	}
}

// handleHealthz reports liveness: the process is up and the database
// answers a ping.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports scheduler state, the durable checkpoint, and the
// stored activity count.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	checkpoint, err := s.store.SyncState(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read sync state"})
		return
	}
	count, err := s.store.CountActivities(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to count activities"})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Sync:       s.controller.Status(),
		Checkpoint: checkpoint,
		Activities: count,
		Time:       time.Now().UTC(),
	})
}

// handleTriggerSync requests an out-of-band sync cycle.
func (s *Server) handleTriggerSync(w http.ResponseWriter, _ *http.Request) {
	if err := s.controller.TriggerSync(); err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sync triggered"})
}
