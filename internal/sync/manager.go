// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

/*
manager.go - Sync Scheduler and Cycle Orchestration

The Manager drives periodic sync cycles against the Strava API:

	Idle -> TokenRefresh -> Fetching <-> Upserting -> Idle

One cycle runs to completion (or failure) before the next begins. There is
no parallel fetching: Strava's rate limit is a shared global resource, and
concurrent requests would make backoff accounting incoherent.

Failure isolation: any step failure abandons the cycle, is logged with its
taxonomy kind, and the scheduler waits for the next interval. No error
terminates the scheduler. Checkpoint advancement already committed for
earlier pages of a failed cycle is retained; nothing past the failure point
is committed.

Shutdown: context cancellation is observed between cycles and at the
declared suspension points (interval wait, backoff waits, between pages).
An in-flight cycle is abandoned without further commits.
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/metrics"
	"github.com/franchyze923/strava-db-syncer/internal/models"
)

// syncEpoch is the start time used when no checkpoint exists yet.
// Y2K rather than the Unix epoch: far enough back to capture any athlete's
// history, and some APIs mishandle pre-2000 dates.
var syncEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// State is the scheduler's position in its cycle state machine.
type State string

// Scheduler states.
const (
	StateIdle         State = "idle"
	StateTokenRefresh State = "token_refresh"
	StateFetching     State = "fetching"
	StateUpserting    State = "upserting"
)

// Store is the persistence surface the scheduler depends on. Implemented by
// database.Mongo in production and by fakes in tests.
type Store interface {
	// ReconcileActivityPage writes a page as a single durable unit,
	// replace-if-exists-else-insert keyed by activity id. Returns the
	// number of records written. Any failure means the whole page must be
	// considered unwritten for checkpoint purposes.
	ReconcileActivityPage(ctx context.Context, page []models.Activity) (int, error)

	// SyncState reads the checkpoint. A missing checkpoint returns a zero
	// LastSyncedTime, not an error.
	SyncState(ctx context.Context) (models.SyncState, error)

	// AdvanceCheckpoint durably advances last_synced_time to t if t is
	// newer than the stored value. Never moves the checkpoint backwards.
	AdvanceCheckpoint(ctx context.Context, t time.Time) error
}

// Status is a point-in-time snapshot of scheduler state for the
// operational API.
type Status struct {
	State            State     `json:"state"`
	Running          bool      `json:"running"`
	LastCycleStart   time.Time `json:"last_cycle_start"`
	LastCycleEnd     time.Time `json:"last_cycle_end"`
	LastCycleError   string    `json:"last_cycle_error,omitempty"`
	LastCycleRecords int       `json:"last_cycle_records"`
	CyclesCompleted  int64     `json:"cycles_completed"`
	CyclesFailed     int64     `json:"cycles_failed"`
}

// Manager owns the sync cycle lifecycle. The credential, checkpoint, and
// database connection are owned exclusively by its single worker; running
// multiple instances against one account would race on the checkpoint
// (deployment constraint, documented, not enforced here).
type Manager struct {
	store   Store
	tokens  TokenSource
	fetcher *Fetcher
	cfg     *config.SyncConfig

	mu      sync.RWMutex
	running bool
	status  Status

	// triggerChan wakes the scheduler for a manual cycle. Buffer of one:
	// a trigger while a cycle runs coalesces into a single follow-up.
	triggerChan chan struct{}
}

// NewManager creates the sync scheduler.
func NewManager(store Store, tokens TokenSource, fetcher *Fetcher, cfg *config.SyncConfig) *Manager {
	return &Manager{
		store:       store,
		tokens:      tokens,
		fetcher:     fetcher,
		cfg:         cfg,
		status:      Status{State: StateIdle},
		triggerChan: make(chan struct{}, 1),
	}
}

// Run executes the scheduler loop until ctx is canceled: an immediate
// first cycle, then one cycle per interval (or manual trigger). Always
// returns ctx.Err(); cycle failures never propagate out of the loop.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.status.State = StateIdle
		m.mu.Unlock()
	}()

	logging.Info().Dur("interval", m.cfg.Interval).Msg("Sync scheduler started")

	for {
		m.executeCycle(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-time.After(m.cfg.Interval):
		case <-m.triggerChan:
			logging.Info().Msg("Manual sync triggered")
		case <-ctx.Done():
			logging.Info().Msg("Sync scheduler stopping")
			return ctx.Err()
		}
	}
}

// TriggerSync requests an out-of-band cycle from the scheduler worker.
// The cycle itself still runs sequentially on the single worker. Returns an
// error when a trigger is already pending or the scheduler is not running.
func (m *Manager) TriggerSync() error {
	m.mu.RLock()
	running := m.running
	m.mu.RUnlock()
	if !running {
		return fmt.Errorf("sync manager is not running")
	}

	select {
	case m.triggerChan <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("a sync is already pending")
	}
}

// Status returns a snapshot of scheduler state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// executeCycle runs one cycle and records its outcome. Errors are absorbed
// here: logged, counted, and surfaced only through Status and metrics.
func (m *Manager) executeCycle(ctx context.Context) {
	cycleID := uuid.New().String()
	start := time.Now()

	m.mu.Lock()
	m.status.LastCycleStart = start
	m.status.LastCycleError = ""
	m.mu.Unlock()

	logging.Info().Str("cycle", cycleID).Msg("Sync cycle starting")

	written, err := m.runCycle(ctx)
	duration := time.Since(start)
	metrics.RecordCycle(duration, err)

	m.mu.Lock()
	m.status.State = StateIdle
	m.status.LastCycleEnd = time.Now()
	m.status.LastCycleRecords = written
	if err != nil {
		m.status.LastCycleError = err.Error()
		m.status.CyclesFailed++
	} else {
		m.status.CyclesCompleted++
	}
	m.mu.Unlock()

	if err != nil {
		kind := errorKind(err)
		metrics.SyncErrors.WithLabelValues(kind).Inc()
		logging.Error().Err(err).Str("cycle", cycleID).Str("kind", kind).Dur("duration", duration).Msg("Sync cycle failed")
		return
	}

	logging.Info().Str("cycle", cycleID).Int("records", written).Dur("duration", duration).Msg("Sync cycle completed")
}

// runCycle performs one full cycle: token warm-up, checkpoint read, then
// interleaved fetch and reconcile per page with checkpoint advancement
// after each durable page write. Returns the number of records written.
func (m *Manager) runCycle(ctx context.Context) (int, error) {
	m.setState(StateTokenRefresh)
	if _, err := m.tokens.AccessToken(ctx); err != nil {
		return 0, err
	}

	state, err := m.store.SyncState(ctx)
	if err != nil {
		return 0, &StorageError{Op: "read sync state", Err: err}
	}

	since := state.LastSyncedTime
	if since.IsZero() || since.Before(syncEpoch) {
		since = syncEpoch
	}
	logging.Info().Time("since", since).Msg("Fetching activities newer than checkpoint")

	total := 0
	m.setState(StateFetching)
	err = m.fetcher.FetchSince(ctx, since, func(page []models.Activity) error {
		m.setState(StateUpserting)
		defer m.setState(StateFetching)

		written, err := m.store.ReconcileActivityPage(ctx, page)
		if err != nil {
			return &StorageError{Op: "reconcile page", Err: err}
		}
		total += written
		metrics.ActivitiesUpserted.Add(float64(written))

		// The checkpoint moves to the true max timestamp seen in the page,
		// and only after every record in the page is confirmed written.
		maxTS := maxStartDate(page)
		if err := m.store.AdvanceCheckpoint(ctx, maxTS); err != nil {
			return &StorageError{Op: "advance checkpoint", Err: err}
		}
		metrics.RecordCheckpoint(maxTS)

		logging.Info().Int("written", written).Int("total", total).Time("checkpoint", maxTS).Msg("Page reconciled")
		return nil
	})

	return total, err
}

// setState publishes the scheduler's current step.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.status.State = s
	m.mu.Unlock()
}
