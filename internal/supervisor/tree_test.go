// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franchyze923/strava-db-syncer/internal/logging"
)

// blockingRunner runs until its context is canceled.
type blockingRunner struct {
	started atomic.Int32
}

func (r *blockingRunner) Run(ctx context.Context) error {
	r.started.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestTreeServeAndShutdown(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	engineRunner := &blockingRunner{}
	opsRunner := &blockingRunner{}
	tree.AddEngineService(NewSyncService("engine-svc", engineRunner))
	tree.AddOpsService(NewSyncService("ops-svc", opsRunner))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for engineRunner.started.Load() == 0 || opsRunner.started.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("services did not start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want nil or context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}

func TestSyncServiceString(t *testing.T) {
	svc := NewSyncService("sync-manager", &blockingRunner{})
	if got := svc.String(); got != "sync-manager" {
		t.Errorf("String() = %q, want sync-manager", got)
	}
}
