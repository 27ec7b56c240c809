// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/strava-db-syncer/config.yaml",
	"/etc/strava-db-syncer/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// The loaded configuration is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// STRAVA_CLIENT_ID -> strava.client_id, DATABASE_URL -> database.url
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// SYNC_INTERVAL has historically been a bare hour count ("6"), while the
	// YAML form is a Go duration ("6h"). Normalize before unmarshaling.
	if err := normalizeIntervalHours(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path of the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// normalizeIntervalHours rewrites a bare integer sync.interval value as an
// hour duration so that Unmarshal's duration decoding accepts it.
func normalizeIntervalHours(k *koanf.Koanf) error {
	raw := k.Get("sync.interval")
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	hours, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil // Not a bare integer; leave for duration parsing
	}
	if hours < 1 {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1 hour, got %d", hours)
	}
	return k.Set("sync.interval", fmt.Sprintf("%dh", hours))
}

// envVarMappings maps recognized environment variables to koanf config paths.
// Names match the original deployment's variables where one existed
// (STRAVA_CLIENT_ID, DATABASE_URL, SYNC_INTERVAL, ACTIVITIES_PER_PAGE).
var envVarMappings = map[string]string{
	"strava_client_id":           "strava.client_id",
	"strava_client_secret":       "strava.client_secret",
	"strava_refresh_token":       "strava.refresh_token",
	"strava_token_url":           "strava.token_url",
	"strava_base_url":            "strava.base_url",
	"activities_per_page":        "strava.page_size",
	"strava_page_size":           "strava.page_size",
	"strava_token_expiry_margin": "strava.token_expiry_margin",
	"strava_requests_per_15m":    "strava.requests_per_15m",
	"strava_timeout":             "strava.timeout",

	"sync_interval":        "sync.interval",
	"sync_retry_attempts":  "sync.retry_attempts",
	"sync_retry_delay":     "sync.retry_delay",
	"sync_retry_max_delay": "sync.retry_max_delay",

	"database_url":     "database.url",
	"database_name":    "database.name",
	"database_timeout": "database.timeout",

	"server_enabled": "server.enabled",
	"server_host":    "server.host",
	"http_port":      "server.port",
	"server_timeout": "server.timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_file":   "logging.file",
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Unrecognized variables are dropped so unrelated process environment
// never leaks into the configuration.
func envTransformFunc(key string) string {
	return envVarMappings[strings.ToLower(key)]
}
