// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

/*
strava_client.go - Core Strava API Client

HTTP communication layer for the Strava v3 API.

Client Features:
  - Bearer token authentication via TokenSource
  - Request pacing below Strava's published rate limit (x/time)
  - Automatic HTTP 429 handling honoring Retry-After, exponential backoff otherwise
  - Bounded transport retries with exponential backoff
  - Context support for cancellation during backoff waits

Resilience Mechanisms:
  - Pacing: token-bucket limiter sized from STRAVA_REQUESTS_PER_15M
  - Rate Limiting: Retry-After hint when present, else capped exponential backoff
  - Transport Retries: bounded attempts for network and 5xx failures
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/metrics"
)

// maxErrorBodySize limits the response body read for error reporting.
// Prevents unbounded memory allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// StravaAPI is the surface of the Strava client used by the fetcher. It is
// implemented by Client, by CircuitBreakerClient, and by test fakes.
//
// Pages are returned as raw JSON items so the fetcher can decode each
// activity individually and skip malformed records without losing the rest
// of the page.
type StravaAPI interface {
	ListActivities(ctx context.Context, after time.Time, page, perPage int) ([]json.RawMessage, error)
}

// Client handles communication with the Strava v3 API.
//
// Thread safety: safe for concurrent use, though the sync engine runs a
// single sequential worker; concurrent fetching would make rate-limit
// accounting incoherent against Strava's global per-athlete quota.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	limiter *rate.Limiter

	maxRetries    int
	retryDelay    time.Duration
	retryMaxDelay time.Duration

	// wait suspends for the given duration or until the context is
	// canceled. Replaced in tests to observe backoff without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Strava API client. Pacing is derived from the
// configured 15-minute request budget; retry bounds come from sync tuning.
func NewClient(cfg *config.StravaConfig, syncCfg *config.SyncConfig, tokens TokenSource) *Client {
	perSecond := rate.Limit(float64(cfg.RequestsPer15Min) / (15 * 60))
	return &Client{
		baseURL: cfg.BaseURL,
		tokens:  tokens,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:       rate.NewLimiter(perSecond, 5),
		maxRetries:    syncCfg.RetryAttempts,
		retryDelay:    syncCfg.RetryDelay,
		retryMaxDelay: syncCfg.RetryMaxDelay,
		wait:          contextSleep,
	}
}

// contextSleep waits for d or until ctx is canceled.
func contextSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay computes the exponential backoff delay for an attempt,
// capped at retryMaxDelay.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryDelay * time.Duration(1<<uint(attempt))
	if delay > c.retryMaxDelay || delay <= 0 {
		delay = c.retryMaxDelay
	}
	return delay
}

// retryAfterDelay extracts the Retry-After hint from a 429 response.
// Returns zero when the header is absent or unparseable.
func retryAfterDelay(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// ListActivities fetches one page of athlete activities strictly newer than
// `after`. Strava returns oldest-first for `after` queries, but callers must
// not rely on page order for checkpoint advancement.
func (c *Client) ListActivities(ctx context.Context, after time.Time, page, perPage int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("after", strconv.FormatInt(after.Unix(), 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	reqURL := fmt.Sprintf("%s/athlete/activities?%s", c.baseURL, params.Encode())

	body, err := c.doRequestWithRetry(ctx, "athlete/activities", reqURL)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode activities page %d: %w", page, err)
	}
	return items, nil
}

// doRequestWithRetry performs an authenticated GET with rate-limit and
// transport retry handling. On HTTP 429 the wait honors the Retry-After
// hint when present, otherwise capped exponential backoff; attempts are
// bounded before failing with a RateLimitError. Transport errors and 5xx
// responses retry with the same bound before failing with a NetworkError.
func (c *Client) doRequestWithRetry(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		body, retryable, err := c.doRequest(ctx, endpoint, reqURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		delay := c.backoffDelay(attempt)
		if rlErr, ok := err.(*rateLimited); ok && rlErr.hint > 0 {
			delay = rlErr.hint
		}
		if _, ok := err.(*rateLimited); ok {
			metrics.RateLimitWaitSeconds.Observe(delay.Seconds())
			logging.Warn().Dur("delay", delay).Int("attempt", attempt+1).Str("endpoint", endpoint).Msg("Rate limited, backing off")
		} else {
			logging.Warn().Err(err).Dur("delay", delay).Int("attempt", attempt+1).Str("endpoint", endpoint).Msg("Transient failure, retrying")
		}

		if werr := c.wait(ctx, delay); werr != nil {
			return nil, werr
		}
	}

	attempts := c.maxRetries + 1
	if _, ok := lastErr.(*rateLimited); ok {
		return nil, &RateLimitError{Attempts: attempts, Err: lastErr}
	}
	return nil, &NetworkError{Attempts: attempts, Err: lastErr}
}

// rateLimited is an internal marker for a 429 response, carrying the
// server's Retry-After hint when one was advertised.
type rateLimited struct {
	hint time.Duration
}

func (e *rateLimited) Error() string {
	if e.hint > 0 {
		return fmt.Sprintf("HTTP 429 (retry after %s)", e.hint)
	}
	return "HTTP 429"
}

// doRequest performs a single authenticated request attempt.
// The second return value reports whether the failure is retryable.
func (c *Client) doRequest(ctx context.Context, endpoint, reqURL string) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, false, err // Already an AuthError
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, &rateLimited{hint: retryAfterDelay(resp)}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		body := readBodyForError(resp.Body)
		return nil, false, &AuthError{Err: fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))}

	case resp.StatusCode >= 500:
		body := readBodyForError(resp.Body)
		return nil, true, fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))

	default:
		body := readBodyForError(resp.Body)
		return nil, false, fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}
}
