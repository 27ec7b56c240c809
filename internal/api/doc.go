// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package api serves the operational HTTP surface: /healthz, Prometheus
// /metrics, sync status, and a manual sync trigger. It never serves stored
// activity data; that belongs to the separate read-only query service.
package api
