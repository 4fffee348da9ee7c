// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t)

	// Generate at least one observed API request.
	env.do(t, "vera", http.MethodGet, "/api/v1/roles", nil)

	rec := httptestGet(env.server, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing Go runtime metrics")
	}
}

func TestRouter_RequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := httptestGet(env.server, "/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	if code := errorCode(t, httptestGet(env.server, "/nope"), http.StatusNotFound); code != codeNotFound {
		t.Errorf("code = %q, want %s", code, codeNotFound)
	}

	rec := serve(env.server, httptestRequest(http.MethodPatch, "/health", nil))
	if code := errorCode(t, rec, http.StatusMethodNotAllowed); code != "METHOD_NOT_ALLOWED" {
		t.Errorf("code = %q, want METHOD_NOT_ALLOWED", code)
	}
}

func TestRouter_LoginIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "", http.MethodPost, "/api/v1/auth/login", `{"account":"root","password":"wrong"}`)
	if code := errorCode(t, rec, http.StatusUnauthorized); code != codeInvalidCredentials {
		t.Errorf("code = %q, want %s", code, codeInvalidCredentials)
	}
}
