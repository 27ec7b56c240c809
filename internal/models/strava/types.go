// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

// Package strava defines wire-level types for the Strava v3 API: the token
// endpoint response and the SummaryActivity shape returned by the athlete
// activities listing. Only the fields the sync engine maps are declared;
// everything else survives in the raw payload kept alongside each record.
package strava

import "time"

// TokenResponse is the payload returned by POST /oauth/token for the
// refresh_token grant. Strava rotates the refresh token on every exchange,
// so both token strings must replace the held credential.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // Unix seconds
	ExpiresIn    int64  `json:"expires_in"` // Seconds until expiry
}

// Fault is Strava's error envelope, returned with non-2xx statuses.
type Fault struct {
	Message string       `json:"message"`
	Errors  []FaultError `json:"errors"`
}

// FaultError is one entry in a Fault's error list.
type FaultError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

// PolylineMap is the map summary attached to an activity. SummaryPolyline is
// a Google encoded polyline; it is empty for activities without GPS data
// (trainer rides, pool swims, manual entries).
type PolylineMap struct {
	ID              string `json:"id"`
	SummaryPolyline string `json:"summary_polyline"`
	ResourceState   int    `json:"resource_state"`
}

// SummaryActivity is one activity as returned by
// GET /api/v3/athlete/activities.
//
// Strava timestamps are RFC 3339 with a Z suffix; start_date is UTC and
// start_date_local is the wall-clock time at the activity location (also
// serialized with Z, with the Timezone field carrying the real offset).
type SummaryActivity struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	SportType          string       `json:"sport_type"`
	Distance           float64      `json:"distance"`
	MovingTime         int          `json:"moving_time"`
	ElapsedTime        int          `json:"elapsed_time"`
	TotalElevationGain float64      `json:"total_elevation_gain"`
	StartDate          time.Time    `json:"start_date"`
	StartDateLocal     time.Time    `json:"start_date_local"`
	Timezone           string       `json:"timezone"`
	Map                *PolylineMap `json:"map"`
	GearID             *string      `json:"gear_id"`
	AverageSpeed       *float64     `json:"average_speed"`
	MaxSpeed           *float64     `json:"max_speed"`
	AverageCadence     *float64     `json:"average_cadence"`
	AverageHeartrate   *float64     `json:"average_heartrate"`
	MaxHeartrate       *float64     `json:"max_heartrate"`
	Calories           *float64     `json:"calories"`
}
