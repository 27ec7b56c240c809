// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package supervisor provides Suture-based in-process supervision: the sync
// engine and the operational API run under separate child supervisors so a
// failure in one never takes down the other.
package supervisor
