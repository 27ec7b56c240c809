// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package config

import "time"

// Config is the root configuration for the syncer process.
//
// Configuration is loaded in layers (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
type Config struct {
	Strava   StravaConfig   `koanf:"strava"`
	Sync     SyncConfig     `koanf:"sync"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StravaConfig holds Strava API credentials and client tuning.
type StravaConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	// RefreshToken is the long-lived token that seeds the OAuth credential.
	// It rotates on every refresh; only the initial value comes from config.
	RefreshToken string `koanf:"refresh_token"`
	TokenURL     string `koanf:"token_url" validate:"omitempty,url"`
	BaseURL      string `koanf:"base_url" validate:"omitempty,url"`
	// PageSize is the per_page bound for the activities listing.
	// Strava caps this at 200 server-side.
	PageSize int `koanf:"page_size" validate:"min=1,max=200"`
	// TokenExpiryMargin is the safety margin before expiry at which the
	// access token is refreshed proactively.
	TokenExpiryMargin time.Duration `koanf:"token_expiry_margin" validate:"min=0"`
	// RequestsPer15Min paces outgoing API calls below Strava's published
	// non-upload limit of 100 requests per 15 minutes.
	RequestsPer15Min int           `koanf:"requests_per_15m" validate:"min=1"`
	Timeout          time.Duration `koanf:"timeout"`
}

// SyncConfig holds scheduler and retry tuning. All backoff constants are
// deployment-tunable rather than hard-coded.
type SyncConfig struct {
	// Interval between cycles. The SYNC_INTERVAL env var accepts a bare
	// integer hour count for compatibility with existing deployments.
	Interval      time.Duration `koanf:"interval" validate:"min=1000000"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	// RetryMaxDelay caps exponential backoff growth.
	RetryMaxDelay time.Duration `koanf:"retry_max_delay"`
}

// DatabaseConfig holds MongoDB connection settings.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Name    string        `koanf:"name"`
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig holds the operational HTTP server settings (health, metrics,
// sync status and trigger). This surface exposes engine state only; the
// read-only activity query service is a separate deployment.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=0,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	// File is an optional log output location written alongside stderr.
	File string `koanf:"file"`
}

// defaultConfig returns a Config with all default values applied.
// Defaults are loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Strava: StravaConfig{
			ClientID:          "",
			ClientSecret:      "",
			RefreshToken:      "",
			TokenURL:          "https://www.strava.com/oauth/token",
			BaseURL:           "https://www.strava.com/api/v3",
			PageSize:          200,
			TokenExpiryMargin: 60 * time.Second,
			RequestsPer15Min:  90, // Below Strava's 100/15min non-upload limit
			Timeout:           30 * time.Second,
		},
		Sync: SyncConfig{
			Interval:      6 * time.Hour, // 4 cycles per day
			RetryAttempts: 5,
			RetryDelay:    2 * time.Second,
			RetryMaxDelay: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			URL:     "",
			Name:    "strava_db",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "",
		},
	}
}
