// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/logging"
)

// Collection names. The read-only query service consumes activities from
// the same collections; only this process ever writes to them.
const (
	activitiesCollection = "activities"
	syncStateCollection  = "sync_state"
)

// Mongo is the MongoDB-backed store for activities and the sync checkpoint.
// All writes use majority write concern: checkpoint advancement must never
// outrun a write that could still be rolled back.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect establishes the MongoDB connection, verifies it with a ping, and
// returns the store. The caller owns the returned store and must Close it.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetWriteConcern(writeconcern.Majority()).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logging.Info().Str("database", cfg.Name).Msg("Connected to MongoDB")

	return &Mongo{
		client:  client,
		db:      client.Database(cfg.Name),
		timeout: cfg.Timeout,
	}, nil
}

// EnsureIndexes creates the unique index on the activity id. Creation is
// idempotent; an existing matching index is a no-op.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.db.Collection(activitiesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create activities index: %w", err)
	}

	logging.Info().Msg("Database indexes ensured")
	return nil
}

// Ping verifies database connectivity, for health checks.
func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
