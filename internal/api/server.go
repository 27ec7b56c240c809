// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/models"
	syncengine "github.com/franchyze923/strava-db-syncer/internal/sync"
)

// SyncController is the scheduler surface exposed over the operational API.
type SyncController interface {
	TriggerSync() error
	Status() syncengine.Status
}

// StatusStore is the read-only store surface for status and health checks.
type StatusStore interface {
	SyncState(ctx context.Context) (models.SyncState, error)
	CountActivities(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Server is the operational HTTP server: health, metrics, sync status, and
// manual trigger. It exposes engine state only and serves no activity data;
// that is the read-only query service's job, a separate deployment with no
// mutation path back into this process.
type Server struct {
	cfg        *config.ServerConfig
	controller SyncController
	store      StatusStore
	httpServer *http.Server
}

// NewServer builds the operational server and its routes.
func NewServer(cfg *config.ServerConfig, controller SyncController, store StatusStore) *Server {
	s := &Server{
		cfg:        cfg,
		controller: controller,
		store:      store,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Get("/status", s.handleStatus)
		r.Post("/sync", s.handleTriggerSync)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       2 * cfg.Timeout,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve implements suture.Service: it runs the HTTP server until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("Operational API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("API server shutdown error")
		}
		<-errCh
		return ctx.Err()
	}
}
