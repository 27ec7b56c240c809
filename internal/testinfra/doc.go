// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package testinfra provides container-based infrastructure for integration
// tests, built on testcontainers-go.
//
// The MongoDB container exercises the real storage layer instead of a fake
// Store, validating index creation, bulk upsert semantics, and $max
// checkpoint behavior against an actual server:
//
//	func TestStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo.Container)
//	    store, err := database.Connect(ctx, &config.DatabaseConfig{URL: mongo.URL, ...})
//	    // ...
//	}
//
// All files in this package carry the integration build tag; run with
// go test -tags integration. Tests skip gracefully when Docker is
// unavailable.
package testinfra
