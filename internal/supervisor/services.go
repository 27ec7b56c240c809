// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package supervisor

import (
	"context"

	"github.com/franchyze923/strava-db-syncer/internal/logging"
)

// Runner is anything with a blocking Run loop bound to a context.
// The sync Manager satisfies this.
type Runner interface {
	Run(ctx context.Context) error
}

// SyncService adapts the sync Manager to the suture.Service interface.
type SyncService struct {
	name   string
	runner Runner
}

// NewSyncService wraps runner as a supervised service.
func NewSyncService(name string, runner Runner) *SyncService {
	return &SyncService{name: name, runner: runner}
}

// Serve implements suture.Service. It blocks in the runner's loop; when the
// context is canceled the runner returns ctx.Err(), which suture treats as
// a normal stop rather than a crash.
func (s *SyncService) Serve(ctx context.Context) error {
	logging.Info().Str("service", s.name).Msg("Starting supervised service")
	err := s.runner.Run(ctx)
	logging.Info().Str("service", s.name).Msg("Supervised service stopped")
	return err
}

// String names the service in suture logs.
func (s *SyncService) String() string {
	return s.name
}
