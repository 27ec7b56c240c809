// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package sync

import (
	"errors"
	"fmt"
)

// Error taxonomy for cycle failures. Every error that aborts a cycle is one
// of these kinds; the scheduler logs the kind and waits for the next
// interval. Only MalformedRecordError is absorbed at its point of origin
// (a single bad record is logged and skipped, never aborting the page).

// AuthError indicates the OAuth refresh was rejected or unreachable.
// The token manager does not retry internally; a persistent auth failure
// must not be retried indefinitely inside a low-level component.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError indicates the bounded in-cycle backoff attempts for an
// HTTP 429 were exhausted.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts: %v", e.Attempts, e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }

// NetworkError indicates a transport failure that exceeded bounded retries.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure after %d attempts: %v", e.Attempts, e.Err)
}
func (e *NetworkError) Unwrap() error { return e.Err }

// StorageError indicates a database write or read failed. The checkpoint is
// never advanced past a page that produced one.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// MalformedRecordError indicates a single activity payload could not be
// decoded. It is logged and skipped per item so one bad record does not
// block the rest of the page.
type MalformedRecordError struct {
	Index int
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at index %d: %v", e.Index, e.Err)
}
func (e *MalformedRecordError) Unwrap() error { return e.Err }

// errorKind maps an error to its taxonomy label for logs and metrics.
func errorKind(err error) string {
	var (
		authErr      *AuthError
		rateErr      *RateLimitError
		netErr       *NetworkError
		storageErr   *StorageError
		malformedErr *MalformedRecordError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &storageErr):
		return "storage"
	case errors.As(err, &malformedErr):
		return "malformed_record"
	default:
		return "other"
	}
}
