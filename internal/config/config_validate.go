// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// minJWTSecretLength is enforced in production.
const minJWTSecretLength = 32

// ErrBypassInProduction is returned when an authorization bypass subject is
// configured with ENVIRONMENT=production.
var ErrBypassInProduction = errors.New("AUTHZ_BYPASS_SUBJECT must not be set in production")

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAuthz(); err != nil {
		return err
	}
	if err := c.validateDirectory(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateSupervisor(); err != nil {
		return err
	}
	return c.validateLogging()
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// IsDevelopment reports whether ENVIRONMENT is development or unset.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || strings.EqualFold(c.Server.Environment, "development")
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch strings.ToLower(c.Server.Environment) {
	case "", "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging, or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %v", c.Security.TokenTTL)
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Security.BcryptCost)
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard CORS origin outside production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return !c.IsProduction() && c.hasWildcardCORS()
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateAuthz() error {
	if c.Authz.MailboxSize < 1 {
		return fmt.Errorf("AUTHZ_MAILBOX_SIZE must be at least 1, got %d", c.Authz.MailboxSize)
	}
	if c.Authz.ReloadTimeout <= 0 {
		return fmt.Errorf("AUTHZ_RELOAD_TIMEOUT must be positive, got %v", c.Authz.ReloadTimeout)
	}
	if c.Authz.CacheEnabled && c.Authz.CacheTTL <= 0 {
		return fmt.Errorf("AUTHZ_CACHE_TTL must be positive when the cache is enabled, got %v", c.Authz.CacheTTL)
	}
	if c.Authz.BypassSubject != "" && c.IsProduction() {
		return ErrBypassInProduction
	}
	return nil
}

func (c *Config) validateDirectory() error {
	switch c.Directory.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Directory.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for the badger directory backend")
		}
	case BackendDuckDB:
		if c.Directory.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required for the duckdb directory backend")
		}
	default:
		return fmt.Errorf("DIRECTORY_BACKEND must be memory, badger, or duckdb, got %q", c.Directory.Backend)
	}

	if c.Directory.BreakerEnabled {
		if c.Directory.BreakerMaxFailures == 0 {
			return fmt.Errorf("DIRECTORY_BREAKER_MAX_FAILURES must be at least 1")
		}
		if c.Directory.BreakerTimeout <= 0 {
			return fmt.Errorf("DIRECTORY_BREAKER_TIMEOUT must be positive, got %v", c.Directory.BreakerTimeout)
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("NATS_TOPIC is required when NATS_ENABLED=true")
	}
	if c.NATS.ReloadRate <= 0 || c.NATS.ReloadBurst < 1 {
		return fmt.Errorf("NATS_RELOAD_RATE and NATS_RELOAD_BURST must be positive")
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.Port < -1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between -1 and 65535, got %d", c.NATS.Port)
		}
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive")
	}
	if c.Supervisor.ShutdownTimeout <= 0 {
		return fmt.Errorf("SUPERVISOR_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn, or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateHistory() error {
	if !c.History.Enabled {
		return nil
	}
	switch c.History.Backend {
	case BackendMemory:
		if c.History.MemoryMaxEntries < 1 {
			return fmt.Errorf("HISTORY_MEMORY_MAX_ENTRIES must be positive, got %d", c.History.MemoryMaxEntries)
		}
	case BackendDuckDB:
		if c.History.DuckDBPath == "" {
			return fmt.Errorf("HISTORY_DUCKDB_PATH is required for the duckdb history backend")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be memory or duckdb, got %q", c.History.Backend)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative, got %d", c.History.RetentionDays)
	}
	if c.History.RetentionDays > 0 && c.History.CleanupInterval <= 0 {
		return fmt.Errorf("HISTORY_CLEANUP_INTERVAL must be positive when retention is set, got %v", c.History.CleanupInterval)
	}
	if c.History.BufferSize < 1 {
		return fmt.Errorf("HISTORY_BUFFER_SIZE must be positive, got %d", c.History.BufferSize)
	}
	return nil
}
