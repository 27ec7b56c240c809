// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package database provides the MongoDB-backed store: idempotent
// page-granular activity upserts, the monotonic sync checkpoint, and index
// management. It implements the sync package's Store interface.
package database
