// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCycle(t *testing.T) {
	before := testutil.ToFloat64(SyncCyclesTotal.WithLabelValues("success"))
	RecordCycle(30*time.Second, nil)
	after := testutil.ToFloat64(SyncCyclesTotal.WithLabelValues("success"))
	if after != before+1 {
		t.Errorf("success counter = %v, want %v", after, before+1)
	}

	beforeFail := testutil.ToFloat64(SyncCyclesTotal.WithLabelValues("failure"))
	RecordCycle(time.Second, fmt.Errorf("cycle failed"))
	afterFail := testutil.ToFloat64(SyncCyclesTotal.WithLabelValues("failure"))
	if afterFail != beforeFail+1 {
		t.Errorf("failure counter = %v, want %v", afterFail, beforeFail+1)
	}
}

func TestRecordCheckpoint(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	RecordCheckpoint(ts)
	if got := testutil.ToFloat64(CheckpointTimestamp); got != float64(ts.Unix()) {
		t.Errorf("checkpoint gauge = %v, want %v", got, float64(ts.Unix()))
	}

	// A zero time must not clobber the published position
	RecordCheckpoint(time.Time{})
	if got := testutil.ToFloat64(CheckpointTimestamp); got != float64(ts.Unix()) {
		t.Errorf("checkpoint gauge = %v after zero time, want unchanged %v", got, float64(ts.Unix()))
	}
}
