// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/models"
	"github.com/franchyze923/strava-db-syncer/internal/testinfra"
)

// Usage:
//   go test -tags integration ./internal/database/...

func makeActivities(firstID int64, n int, base time.Time) []models.Activity {
	page := make([]models.Activity, 0, n)
	for i := 0; i < n; i++ {
		page = append(page, models.Activity{
			ID:        firstID + int64(i),
			Name:      "Ride",
			Type:      "Ride",
			StartDate: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return page
}

func TestMongoStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	store, err := Connect(ctx, &config.DatabaseConfig{
		URL:     container.URL,
		Name:    "strava_db_test",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = store.Close(ctx) }()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	// Index creation must be idempotent across restarts
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("second EnsureIndexes() error = %v", err)
	}

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("reconcile page is idempotent", func(t *testing.T) {
		page := makeActivities(1, 10, base)

		for pass := 1; pass <= 2; pass++ {
			written, err := store.ReconcileActivityPage(ctx, page)
			if err != nil {
				t.Fatalf("ReconcileActivityPage() pass %d error = %v", pass, err)
			}
			if written != 10 {
				t.Errorf("written = %d, want 10", written)
			}
		}

		count, err := store.CountActivities(ctx)
		if err != nil {
			t.Fatalf("CountActivities() error = %v", err)
		}
		if count != 10 {
			t.Errorf("document count = %d, want 10 (re-delivery must not duplicate)", count)
		}
	})

	t.Run("reconcile replaces changed documents", func(t *testing.T) {
		page := makeActivities(1, 1, base)
		page[0].Name = "Renamed Ride"

		if _, err := store.ReconcileActivityPage(ctx, page); err != nil {
			t.Fatalf("ReconcileActivityPage() error = %v", err)
		}

		count, err := store.CountActivities(ctx)
		if err != nil {
			t.Fatalf("CountActivities() error = %v", err)
		}
		if count != 10 {
			t.Errorf("document count = %d, want 10", count)
		}
	})

	t.Run("missing checkpoint reads as zero", func(t *testing.T) {
		state, err := store.SyncState(ctx)
		if err != nil {
			t.Fatalf("SyncState() error = %v", err)
		}
		if !state.LastSyncedTime.IsZero() {
			t.Errorf("LastSyncedTime = %v, want zero before first advance", state.LastSyncedTime)
		}
	})

	t.Run("checkpoint advances monotonically", func(t *testing.T) {
		first := base.Add(1 * time.Hour)
		if err := store.AdvanceCheckpoint(ctx, first); err != nil {
			t.Fatalf("AdvanceCheckpoint() error = %v", err)
		}

		state, err := store.SyncState(ctx)
		if err != nil {
			t.Fatalf("SyncState() error = %v", err)
		}
		if !state.LastSyncedTime.Equal(first) {
			t.Errorf("LastSyncedTime = %v, want %v", state.LastSyncedTime, first)
		}

		// A stale advancement must not move the checkpoint backwards
		if err := store.AdvanceCheckpoint(ctx, base); err != nil {
			t.Fatalf("AdvanceCheckpoint(stale) error = %v", err)
		}
		state, err = store.SyncState(ctx)
		if err != nil {
			t.Fatalf("SyncState() error = %v", err)
		}
		if !state.LastSyncedTime.Equal(first) {
			t.Errorf("LastSyncedTime = %v after stale advance, want unchanged %v", state.LastSyncedTime, first)
		}

		second := base.Add(2 * time.Hour)
		if err := store.AdvanceCheckpoint(ctx, second); err != nil {
			t.Fatalf("AdvanceCheckpoint() error = %v", err)
		}
		state, err = store.SyncState(ctx)
		if err != nil {
			t.Fatalf("SyncState() error = %v", err)
		}
		if !state.LastSyncedTime.Equal(second) {
			t.Errorf("LastSyncedTime = %v, want advanced %v", state.LastSyncedTime, second)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
