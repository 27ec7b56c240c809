// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package models

import "time"

// SyncStateID is the fixed _id of the sync_state singleton document.
// There is exactly one checkpoint per deployment; the design assumes at most
// one live sync instance per Strava account (enforced by deployment, not here).
const SyncStateID = "singleton"

// Activity is one Strava activity as stored in the activities collection.
//
// The document is keyed by the Strava-assigned activity ID, which carries a
// unique index. Re-ingesting an activity replaces the existing document, so
// repeated delivery of the same page is idempotent.
//
// Field names mirror Strava's own snake_case naming so that downstream
// read-only consumers see the vocabulary they expect. RawData always holds
// the entire payload as received, so no remote field is ever lost even when
// it has no mapped column.
type Activity struct {
	ID                 int64          `bson:"id" json:"id"`
	Name               string         `bson:"name" json:"name"`
	Type               string         `bson:"type" json:"type"`
	Distance           float64        `bson:"distance" json:"distance"`
	MovingTime         int            `bson:"moving_time" json:"moving_time"`
	ElapsedTime        int            `bson:"elapsed_time" json:"elapsed_time"`
	TotalElevationGain float64        `bson:"total_elevation_gain" json:"total_elevation_gain"`
	SportType          string         `bson:"sport_type" json:"sport_type"`
	StartDate          time.Time      `bson:"start_date" json:"start_date"`
	StartDateLocal     time.Time      `bson:"start_date_local" json:"start_date_local"`
	Timezone           string         `bson:"timezone" json:"timezone"`
	Map                map[string]any `bson:"map" json:"map"`
	Polyline           *string        `bson:"polyline" json:"polyline"`
	DecodedPolyline    [][]float64    `bson:"decoded_polyline" json:"decoded_polyline"`
	Gear               map[string]any `bson:"gear" json:"gear"`
	AverageSpeed       *float64       `bson:"average_speed" json:"average_speed"`
	MaxSpeed           *float64       `bson:"max_speed" json:"max_speed"`
	AverageCadence     *float64       `bson:"average_cadence" json:"average_cadence"`
	AverageHeartrate   *float64       `bson:"average_heartrate" json:"average_heartrate"`
	MaxHeartrate       *float64       `bson:"max_heartrate" json:"max_heartrate"`
	Calories           *float64       `bson:"calories" json:"calories"`
	RawData            map[string]any `bson:"raw_data" json:"raw_data"`
}

// SyncState is the durable checkpoint marking the newest activity start time
// that has been fully reconciled into the activities collection.
//
// Invariants:
//   - LastSyncedTime is monotonically non-decreasing across cycles.
//   - It is advanced only after the corresponding page of activities is
//     confirmed written, never before.
type SyncState struct {
	ID             string    `bson:"_id" json:"-"`
	LastSyncedTime time.Time `bson:"last_synced_time" json:"last_synced_time"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
