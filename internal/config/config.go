// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Authz      AuthzConfig      `koanf:"authz"`
	Directory  DirectoryConfig  `koanf:"directory"`
	NATS       NATSConfig       `koanf:"nats"`
	History    HistoryConfig    `koanf:"history"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Environment is "development", "staging" or "production".
	Environment string `koanf:"environment"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	// JWTSecret signs HS256 access tokens. Required.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of issued tokens.
	// Default: 1h
	TokenTTL time.Duration `koanf:"token_ttl"`

	// TokenIssuer is written to and required in the iss claim when non-empty.
	TokenIssuer string `koanf:"token_issuer"`

	// BcryptCost is the cost used when hashing user passwords.
	// Default: 12
	BcryptCost int `koanf:"bcrypt_cost"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AuthzConfig holds settings for the authorization actor and enforcer.
type AuthzConfig struct {
	// MailboxSize is the actor mailbox capacity.
	// Default: 100
	MailboxSize int `koanf:"mailbox_size"`

	// ReloadTimeout bounds one policy reload.
	// Default: 30s
	ReloadTimeout time.Duration `koanf:"reload_timeout"`

	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`

	// BypassSubject is an account granted every permission. Test fixtures
	// only; rejected in production.
	BypassSubject string `koanf:"bypass_subject"`
}

// Directory backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendDuckDB = "duckdb"
)

// DirectoryConfig selects and tunes the role and user store.
type DirectoryConfig struct {
	// Backend is memory, badger or duckdb.
	// Default: badger
	Backend string `koanf:"backend"`

	BadgerPath string `koanf:"badger_path"`

	// DuckDBPath is a database file, or ":memory:".
	DuckDBPath string `koanf:"duckdb_path"`

	// SeedPath is an optional YAML file of roles and users upserted at startup.
	SeedPath string `koanf:"seed_path"`

	// Circuit breaker around directory reads.
	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
}

// NATSConfig holds change-notification transport settings. When disabled,
// notifications stay inside the process on a watermill gochannel.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`

	// EmbeddedServer starts a NATS server inside the process.
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`

	// Topic is the subject change events are published on.
	Topic string `koanf:"topic"`

	// InstanceID identifies this process in published events so it can
	// ignore its own. Generated when empty.
	InstanceID string `koanf:"instance_id"`

	// ReloadRate limits notification-driven reloads per second.
	ReloadRate  float64 `koanf:"reload_rate"`
	ReloadBurst int     `koanf:"reload_burst"`
}

// HistoryConfig selects and tunes the policy reload history.
type HistoryConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is memory or duckdb.
	// Default: memory
	Backend string `koanf:"backend"`

	DuckDBPath string `koanf:"duckdb_path"`

	// MemoryMaxEntries bounds the memory backend.
	MemoryMaxEntries int `koanf:"memory_max_entries"`

	// RetentionDays is how long entries are kept. Zero keeps them forever.
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// SupervisorConfig tunes the suture supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
