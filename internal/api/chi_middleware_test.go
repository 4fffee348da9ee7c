// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/warden/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	m := NewChiMiddleware(nil)

	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.CORSMaxAge != 86400 {
		t.Errorf("CORSMaxAge = %d, want 86400", m.config.CORSMaxAge)
	}
	if m.config.RateLimitRequests != 100 || m.config.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d/%v, want 100/1m", m.config.RateLimitRequests, m.config.RateLimitWindow)
	}
}

func TestNewChiMiddlewareConfig(t *testing.T) {
	tests := []struct {
		name        string
		sec         config.SecurityConfig
		wantOrigins int
		wantReqs    int
		wantWindow  time.Duration
		wantOff     bool
	}{
		{
			name:        "zero values keep defaults",
			sec:         config.SecurityConfig{},
			wantOrigins: 0, wantReqs: 100, wantWindow: time.Minute,
		},
		{
			name: "explicit settings",
			sec: config.SecurityConfig{
				CORSOrigins:     []string{"https://a.example", "https://b.example"},
				RateLimitReqs:   20,
				RateLimitWindow: 30 * time.Second,
			},
			wantOrigins: 2, wantReqs: 20, wantWindow: 30 * time.Second,
		},
		{
			name:        "disabled",
			sec:         config.SecurityConfig{RateLimitDisabled: true},
			wantOrigins: 0, wantReqs: 100, wantWindow: time.Minute, wantOff: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewChiMiddlewareConfig(tt.sec)
			if len(cfg.CORSAllowedOrigins) != tt.wantOrigins {
				t.Errorf("origins = %v, want %d", cfg.CORSAllowedOrigins, tt.wantOrigins)
			}
			if cfg.RateLimitRequests != tt.wantReqs {
				t.Errorf("RateLimitRequests = %d, want %d", cfg.RateLimitRequests, tt.wantReqs)
			}
			if cfg.RateLimitWindow != tt.wantWindow {
				t.Errorf("RateLimitWindow = %v, want %v", cfg.RateLimitWindow, tt.wantWindow)
			}
			if cfg.RateLimitDisabled != tt.wantOff {
				t.Errorf("RateLimitDisabled = %v, want %v", cfg.RateLimitDisabled, tt.wantOff)
			}
		})
	}
}

func TestChiMiddleware_CORSPreflight(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://admin.example"}
	handler := NewChiMiddleware(cfg).CORS()(okHandler())

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"https://admin.example", "https://admin.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/roles", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestChiMiddleware_RateLimit(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	handler := NewChiMiddleware(cfg).RateLimit()(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if code := errorCode(t, rec, http.StatusTooManyRequests); code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", code)
	}
}

func TestChiMiddleware_RateLimitLogin(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.LoginRateLimitRequests = 1
	handler := NewChiMiddleware(cfg).RateLimitLogin()(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("statuses = %d, %d; want 200, 429", first.Code, second.Code)
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	m := NewChiMiddleware(cfg)

	for name, mw := range map[string]func(http.Handler) http.Handler{
		"general": m.RateLimit(),
		"login":   m.RateLimitLogin(),
	} {
		handler := mw(okHandler())
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("%s request %d status = %d, want 200", name, i+1, rec.Code)
			}
		}
	}
}
