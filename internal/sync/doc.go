// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package sync implements the synchronization engine: the OAuth token
// manager, the resilient Strava API client and its circuit breaker wrap,
// the paginated activity fetcher, and the scheduler that drives cycles and
// checkpoint advancement against the store.
//
// The engine guarantees forward progress and idempotence across unreliable,
// rate-limited network calls: activities are upserted by their Strava id,
// and the durable checkpoint advances only after a page is confirmed
// written, so a crashed or failed cycle re-fetches from a safe point
// instead of skipping or duplicating data.
package sync
