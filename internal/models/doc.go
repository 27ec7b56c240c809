// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package models defines the documents persisted by the sync engine: the
// Activity document stored in the activities collection and the SyncState
// checkpoint singleton stored in sync_state. Wire-level Strava API types
// live in models/strava.
package models
