// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/franchyze923/strava-db-syncer/internal/models"
)

// ReconcileActivityPage writes a page of activities as one ordered bulk of
// replace-or-insert operations keyed by activity id. Repeated delivery of
// the same page converges to the same stored documents, which makes
// crash-and-retry delivery safe.
//
// The page is all-or-nothing for checkpoint purposes: any write failure is
// returned as an error and the caller must withhold checkpoint advancement
// for the whole page. Returns the number of records reconciled.
func (m *Mongo) ReconcileActivityPage(ctx context.Context, page []models.Activity) (int, error) {
	if len(page) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(page))
	for i := range page {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"id": page[i].ID}).
			SetReplacement(page[i]).
			SetUpsert(true))
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.db.Collection(activitiesCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("bulk upsert of %d activities failed: %w", len(page), err)
	}
	return len(page), nil
}

// SyncState reads the checkpoint singleton. A missing document is not an
// error: it returns a zero LastSyncedTime, meaning no cycle has completed
// a page yet.
func (m *Mongo) SyncState(ctx context.Context) (models.SyncState, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var state models.SyncState
	err := m.db.Collection(syncStateCollection).
		FindOne(ctx, bson.M{"_id": models.SyncStateID}).
		Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SyncState{ID: models.SyncStateID}, nil
	}
	if err != nil {
		return models.SyncState{}, fmt.Errorf("failed to read sync state: %w", err)
	}
	return state, nil
}

// AdvanceCheckpoint durably advances last_synced_time to t. The $max update
// operator makes monotonicity a database-level guarantee: a stale or
// replayed advancement can never move the checkpoint backwards.
func (m *Mongo) AdvanceCheckpoint(ctx context.Context, t time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.db.Collection(syncStateCollection).UpdateByID(ctx,
		models.SyncStateID,
		bson.M{
			"$max": bson.M{"last_synced_time": t},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to advance checkpoint: %w", err)
	}
	return nil
}

// CountActivities returns the total number of stored activities.
// Used by the operational status endpoint.
func (m *Mongo) CountActivities(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.db.Collection(activitiesCollection).CountDocuments(ctx, bson.M{})
}
