// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package config loads and validates syncer configuration via Koanf v2.
//
// Sources are layered, highest priority last: built-in defaults, an optional
// YAML config file, then environment variables. Recognized variables keep
// the names of the original deployment (STRAVA_CLIENT_ID,
// STRAVA_CLIENT_SECRET, STRAVA_REFRESH_TOKEN, DATABASE_URL, SYNC_INTERVAL,
// ACTIVITIES_PER_PAGE) plus daemon-specific settings such as retry tuning,
// the operational server port, and log output.
package config
