// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestSecurityLogger() (*SecurityLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSecurityLoggerWithLogger(zerolog.New(&buf)), &buf
}

func TestSecurityLogger_PermissionDenied(t *testing.T) {
	t.Parallel()

	l, buf := newTestSecurityLogger()
	l.LogPermissionDenied("bob", "DELETE", "/api/v1/roles/admin", "10.0.0.1")

	output := buf.String()
	for _, want := range []string{
		`"component":"security"`,
		`"event":"permission_denied"`,
		`"status":"failed"`,
		`"level":"warn"`,
		`"account":"bob"`,
		`"method":"DELETE"`,
		`"path":"/api/v1/roles/admin"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestSecurityLogger_LoginEvents(t *testing.T) {
	t.Parallel()

	l, buf := newTestSecurityLogger()
	l.LogLoginSuccess("alice", "127.0.0.1")
	l.LogLoginFailure("mallory", "127.0.0.1", "invalid password")

	output := buf.String()
	if !strings.Contains(output, `"event":"login_success"`) {
		t.Errorf("missing login_success: %s", output)
	}
	if !strings.Contains(output, `"event":"login_failure"`) {
		t.Errorf("missing login_failure: %s", output)
	}
	if strings.Contains(output, "invalid password") {
		t.Errorf("credential-related error should be sanitized: %s", output)
	}
}

func TestSecurityLogger_DirectoryChangeAndReload(t *testing.T) {
	t.Parallel()

	l, buf := newTestSecurityLogger()
	l.LogDirectoryChange("admin", "role", "editor", "upsert")
	l.LogPolicyReload("admin", errors.New("directory unavailable"))

	output := buf.String()
	for _, want := range []string{
		`"kind":"role"`,
		`"name":"editor"`,
		`"op":"upsert"`,
		`"event":"policy_reload"`,
		`"error":"directory unavailable"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"", ""},
		{"short", "***"},
		{"eyJhbGciOiJIUzI1NiJ9.payload.sig", "eyJh....sig"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError("bad bearer token"); got != "authentication error" {
		t.Errorf("SanitizeError leaked credential context: %q", got)
	}
	if got := SanitizeError("connection refused"); got != "connection refused" {
		t.Errorf("SanitizeError changed harmless error: %q", got)
	}
	long := strings.Repeat("x", 300)
	if got := SanitizeError(long); len(got) != 203 {
		t.Errorf("SanitizeError length = %d, want 203", len(got))
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("Password", "hunter2hunter2"); got != "hunt...ter2" {
		t.Errorf("SanitizeValue(password) = %q", got)
	}
	if got := SanitizeValue("role", "admin"); got != "admin" {
		t.Errorf("SanitizeValue(role) = %q, want admin", got)
	}
}
