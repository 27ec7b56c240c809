// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-polyline"

	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/metrics"
	"github.com/franchyze923/strava-db-syncer/internal/models"
	"github.com/franchyze923/strava-db-syncer/internal/models/strava"
)

// Fetcher retrieves paginated activity history from the Strava API and maps
// each page into Activity documents.
type Fetcher struct {
	api      StravaAPI
	pageSize int
}

// NewFetcher creates a fetcher requesting up to pageSize items per page.
// Strava caps per_page at 200; config validation enforces the bound.
func NewFetcher(api StravaAPI, pageSize int) *Fetcher {
	return &Fetcher{api: api, pageSize: pageSize}
}

// FetchSince pages through activities strictly newer than `since`, invoking
// fn once per non-empty page. The sequence is finite and not restartable:
// a cycle that fails mid-fetch re-fetches from the durable checkpoint on its
// next attempt.
//
// Pagination terminates when a page returns fewer items than requested, or
// an empty page. Malformed items are logged and skipped individually so one
// bad record never blocks the rest of its page. An error from fn stops the
// fetch immediately and is returned as-is.
func (f *Fetcher) FetchSince(ctx context.Context, since time.Time, fn func(page []models.Activity) error) error {
	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		items, err := f.api.ListActivities(ctx, since, page, f.pageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch activities page %d: %w", page, err)
		}
		metrics.SyncPageSize.Observe(float64(len(items)))

		if len(items) == 0 {
			return nil
		}

		activities := f.decodePage(items)
		if len(activities) > 0 {
			if err := fn(activities); err != nil {
				return err
			}
		}

		if len(items) < f.pageSize {
			return nil
		}
	}
}

// decodePage decodes raw page items individually, skipping malformed
// records with a per-item log entry.
func (f *Fetcher) decodePage(items []json.RawMessage) []models.Activity {
	activities := make([]models.Activity, 0, len(items))
	for i, raw := range items {
		activity, err := mapActivity(raw)
		if err != nil {
			mErr := &MalformedRecordError{Index: i, Err: err}
			logging.Warn().Err(mErr).Msg("Skipping malformed activity record")
			metrics.SyncErrors.WithLabelValues("malformed_record").Inc()
			continue
		}
		activities = append(activities, activity)
	}
	return activities
}

// mapActivity maps one raw Strava activity payload into the stored document
// shape. The entire payload is retained in RawData so unmapped remote fields
// are never lost.
func mapActivity(raw json.RawMessage) (models.Activity, error) {
	var sa strava.SummaryActivity
	if err := json.Unmarshal(raw, &sa); err != nil {
		return models.Activity{}, fmt.Errorf("failed to decode activity: %w", err)
	}
	if sa.ID == 0 {
		return models.Activity{}, fmt.Errorf("activity has no id")
	}
	if sa.StartDate.IsZero() {
		return models.Activity{}, fmt.Errorf("activity %d has no start_date", sa.ID)
	}

	var rawData map[string]any
	if err := json.Unmarshal(raw, &rawData); err != nil {
		return models.Activity{}, fmt.Errorf("failed to decode activity %d raw payload: %w", sa.ID, err)
	}

	activity := models.Activity{
		ID:                 sa.ID,
		Name:               sa.Name,
		Type:               sa.Type,
		Distance:           sa.Distance,
		MovingTime:         sa.MovingTime,
		ElapsedTime:        sa.ElapsedTime,
		TotalElevationGain: sa.TotalElevationGain,
		SportType:          sa.SportType,
		StartDate:          sa.StartDate,
		StartDateLocal:     sa.StartDateLocal,
		Timezone:           sa.Timezone,
		AverageSpeed:       sa.AverageSpeed,
		MaxSpeed:           sa.MaxSpeed,
		AverageCadence:     sa.AverageCadence,
		AverageHeartrate:   sa.AverageHeartrate,
		MaxHeartrate:       sa.MaxHeartrate,
		Calories:           sa.Calories,
		RawData:            rawData,
	}

	if m, ok := rawData["map"].(map[string]any); ok {
		activity.Map = m
	}
	if g, ok := rawData["gear"].(map[string]any); ok {
		activity.Gear = g
	}

	if sa.Map != nil && sa.Map.SummaryPolyline != "" {
		encoded := sa.Map.SummaryPolyline
		activity.Polyline = &encoded
		coords, _, err := polyline.DecodeCoords([]byte(encoded))
		if err != nil {
			// GPS-less or corrupt polylines keep the rest of the document
			logging.Warn().Err(err).Int64("activity_id", sa.ID).Msg("Failed to decode summary polyline")
		} else {
			activity.DecodedPolyline = coords
		}
	}

	return activity, nil
}

// maxStartDate returns the latest start timestamp in a page. Checkpoint
// advancement uses the true maximum seen rather than trusting page order,
// since Strava's pagination order is not part of its API contract.
func maxStartDate(page []models.Activity) time.Time {
	var maxTS time.Time
	for i := range page {
		if page[i].StartDate.After(maxTS) {
			maxTS = page[i].StartDate
		}
	}
	return maxTS
}
