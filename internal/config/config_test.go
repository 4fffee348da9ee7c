// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns defaults that pass validation.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}
	if cfg.Authz.MailboxSize != 100 {
		t.Errorf("Authz.MailboxSize = %d, want 100", cfg.Authz.MailboxSize)
	}
	if cfg.Authz.ReloadTimeout != 30*time.Second {
		t.Errorf("Authz.ReloadTimeout = %v, want 30s", cfg.Authz.ReloadTimeout)
	}
	if cfg.Authz.BypassSubject != "" {
		t.Errorf("Authz.BypassSubject = %q, want empty", cfg.Authz.BypassSubject)
	}
	if cfg.Directory.Backend != BackendBadger {
		t.Errorf("Directory.Backend = %q, want badger", cfg.Directory.Backend)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should default to false")
	}
	if cfg.NATS.Topic != "warden.directory.changes" {
		t.Errorf("NATS.Topic = %q", cfg.NATS.Topic)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("Security.BcryptCost = %d, want 12", cfg.Security.BcryptCost)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with secret", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://warden.example.com"}
			c.Security.JWTSecret = "short"
		}, "at least 32"},
		{"short secret in development", func(c *Config) { c.Security.JWTSecret = "short" }, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, "ENVIRONMENT"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"zero rate limit but disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"bcrypt cost too high", func(c *Config) { c.Security.BcryptCost = 99 }, "BCRYPT_COST"},
		{"zero mailbox", func(c *Config) { c.Authz.MailboxSize = 0 }, "AUTHZ_MAILBOX_SIZE"},
		{"cache without ttl", func(c *Config) {
			c.Authz.CacheEnabled = true
			c.Authz.CacheTTL = 0
		}, "AUTHZ_CACHE_TTL"},
		{"bypass in development", func(c *Config) { c.Authz.BypassSubject = "fixture" }, ""},
		{"unknown backend", func(c *Config) { c.Directory.Backend = "mongo" }, "DIRECTORY_BACKEND"},
		{"duckdb without path", func(c *Config) {
			c.Directory.Backend = BackendDuckDB
			c.Directory.DuckDBPath = ""
		}, "DUCKDB_PATH"},
		{"memory backend", func(c *Config) { c.Directory.Backend = BackendMemory }, ""},
		{"nats bad url", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.URL = "http://localhost:4222"
		}, "NATS_URL"},
		{"nats embedded ignores url", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.EmbeddedServer = true
			c.NATS.URL = ""
		}, ""},
		{"unknown history backend", func(c *Config) { c.History.Backend = "syslog" }, "HISTORY_BACKEND"},
		{"history duckdb without path", func(c *Config) {
			c.History.Backend = BackendDuckDB
			c.History.DuckDBPath = ""
		}, "HISTORY_DUCKDB_PATH"},
		{"history zero buffer", func(c *Config) { c.History.BufferSize = 0 }, "HISTORY_BUFFER_SIZE"},
		{"history retention without interval", func(c *Config) { c.History.CleanupInterval = 0 }, "HISTORY_CLEANUP_INTERVAL"},
		{"history disabled skips checks", func(c *Config) {
			c.History.Enabled = false
			c.History.Backend = "syslog"
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"zero supervisor threshold", func(c *Config) { c.Supervisor.FailureThreshold = 0 }, "SUPERVISOR_FAILURE_THRESHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BypassRejectedInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Environment = "production"
	cfg.Security.CORSOrigins = []string{"https://warden.example.com"}
	cfg.Authz.BypassSubject = "fixture-root"

	if err := cfg.Validate(); !errors.Is(err, ErrBypassInProduction) {
		t.Errorf("Validate() error = %v, want ErrBypassInProduction", err)
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := validConfig()
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard CORS in development should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://a.example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9100
security:
  jwt_secret: from-file-secret-that-is-long-enough-0123
directory:
  backend: memory
authz:
  cache_enabled: true
  cache_ttl: 2m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("HTTP_PORT", "9200")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200 from env", cfg.Server.Port)
	}
	if cfg.Security.JWTSecret != "from-file-secret-that-is-long-enough-0123" {
		t.Errorf("Security.JWTSecret = %q, want value from file", cfg.Security.JWTSecret)
	}
	if cfg.Directory.Backend != BackendMemory {
		t.Errorf("Directory.Backend = %q, want memory", cfg.Directory.Backend)
	}
	if !cfg.Authz.CacheEnabled || cfg.Authz.CacheTTL != 2*time.Minute {
		t.Errorf("Authz cache = %v/%v, want true/2m", cfg.Authz.CacheEnabled, cfg.Authz.CacheTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched defaults survive.
	if cfg.Authz.MailboxSize != 100 {
		t.Errorf("Authz.MailboxSize = %d, want default 100", cfg.Authz.MailboxSize)
	}
}

func TestLoadFile_ValidationFailure(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadFile(""); err == nil {
		t.Error("LoadFile() without a JWT secret should fail")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() with a missing file should fail")
	}
}

func TestFindConfigFile_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"JWT_SECRET":           "security.jwt_secret",
		"AUTHZ_BYPASS_SUBJECT": "authz.bypass_subject",
		"DIRECTORY_BACKEND":    "directory.backend",
		"NATS_EMBEDDED":        "nats.embedded_server",
		"HISTORY_BACKEND":      "history.backend",
		"log_level":            "logging.level",
		"PATH":                 "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
