// Strava DB Syncer - Continuous Strava-to-MongoDB Synchronization
// Copyright 2026 franchyze923
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/franchyze923/strava-db-syncer

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate performs struct-tag validation. A single instance is reused;
// validator instances cache struct metadata and are safe for concurrent use.
var validate = validator.New()

// Validate checks that required configuration is present and valid.
// Credential errors are reported with their environment variable names,
// since that is how operators configure this daemon in practice.
func (c *Config) Validate() error {
	if err := c.validateStrava(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	return c.validateTags()
}

// validateStrava validates Strava API credentials.
func (c *Config) validateStrava() error {
	if c.Strava.ClientID == "" {
		return fmt.Errorf("STRAVA_CLIENT_ID is required")
	}
	if c.Strava.ClientSecret == "" {
		return fmt.Errorf("STRAVA_CLIENT_SECRET is required")
	}
	if c.Strava.RefreshToken == "" {
		return fmt.Errorf("STRAVA_REFRESH_TOKEN is required")
	}
	return nil
}

// validateDatabase validates the MongoDB connection settings.
func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !strings.HasPrefix(c.Database.URL, "mongodb://") && !strings.HasPrefix(c.Database.URL, "mongodb+srv://") {
		return fmt.Errorf("DATABASE_URL must be a mongodb:// or mongodb+srv:// URL")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name must not be empty")
	}
	return nil
}

// validateTags runs struct-tag validation for ranges and enumerations.
func (c *Config) validateTags() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid value for %s: failed %q constraint", fe.Namespace(), fe.Tag())
	}
	return err
}

// asValidationErrors unwraps a validator.ValidationErrors from err.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
