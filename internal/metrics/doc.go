// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package metrics defines the Prometheus instrumentation for the sync
// engine. Metrics are registered via promauto at package load and served by
// the operational HTTP server at /metrics.
package metrics
