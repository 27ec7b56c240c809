// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/franchyze923/strava-db-syncer/internal/config"
	"github.com/franchyze923/strava-db-syncer/internal/logging"
	"github.com/franchyze923/strava-db-syncer/internal/metrics"
	"github.com/franchyze923/strava-db-syncer/internal/models/strava"
)

// TokenSource supplies a currently valid Strava access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Credential is the OAuth credential held in memory for the process
// lifetime. Only the refresh token needs to outlive the process, and its
// initial value comes from configuration.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenManager owns the OAuth credential lifecycle against the Strava token
// endpoint. An access token is never handed out when it is absent, expired,
// or within the configured safety margin of expiry; in those cases the
// long-lived refresh token is exchanged for a new access/refresh pair first.
//
// The manager does not retry failed refreshes internally. Retry policy
// belongs to the scheduler, which treats an AuthError as a cycle failure
// and tries again on the next interval.
//
// Ownership: the credential is mutated in place and is owned exclusively by
// the single sync worker. The manager is intentionally unsynchronized.
type TokenManager struct {
	cfg    *config.StravaConfig
	client *http.Client
	cred   Credential
	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewTokenManager creates a token manager seeded with the configured
// long-lived refresh token. The first AccessToken call performs the initial
// exchange.
func NewTokenManager(cfg *config.StravaConfig) *TokenManager {
	return &TokenManager{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cred: Credential{
			RefreshToken: cfg.RefreshToken,
		},
		now: time.Now,
	}
}

// AccessToken returns a currently valid access token, transparently
// refreshing when the held token is absent, expired, or within the safety
// margin of expiry. On failure it returns an AuthError and leaves the held
// credential unchanged.
func (tm *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if tm.needsRefresh() {
		if err := tm.refresh(ctx); err != nil {
			return "", err
		}
	}
	return tm.cred.AccessToken, nil
}

// needsRefresh reports whether the held access token is unusable: missing,
// expired, or expiring within the configured margin.
func (tm *TokenManager) needsRefresh() bool {
	if tm.cred.AccessToken == "" {
		return true
	}
	return !tm.now().Add(tm.cfg.TokenExpiryMargin).Before(tm.cred.ExpiresAt)
}

// refresh exchanges the refresh token for a new access/refresh pair via a
// single call to the token endpoint. Strava rotates refresh tokens, so both
// token values replace the held credential on success.
func (tm *TokenManager) refresh(ctx context.Context) error {
	logging.Info().Msg("Refreshing Strava access token")

	form := url.Values{}
	form.Set("client_id", tm.cfg.ClientID)
	form.Set("client_secret", tm.cfg.ClientSecret)
	form.Set("refresh_token", tm.cred.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tm.client.Do(req)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return &AuthError{Err: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		body := readBodyForError(resp.Body)
		return &AuthError{Err: fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))}
	}

	var token strava.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return &AuthError{Err: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if token.AccessToken == "" {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return &AuthError{Err: fmt.Errorf("token endpoint returned empty access token")}
	}

	tm.cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		tm.cred.RefreshToken = token.RefreshToken
	}
	tm.cred.ExpiresAt = time.Unix(token.ExpiresAt, 0)

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logging.Info().Time("expires_at", tm.cred.ExpiresAt).Msg("Access token refreshed")
	return nil
}
