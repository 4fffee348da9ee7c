// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an authentication or authorization event.
type SecurityEvent struct {
	// Event names what happened, e.g. "login_failure" or "permission_denied".
	Event     string
	Account   string
	Method    string
	Path      string
	Role      string
	IPAddress string
	Success   bool
	Error     string
	Details   map[string]string
}

// SecurityLogger writes security events with secrets masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("security")}
}

// NewSecurityLoggerWithLogger creates a security logger on the given logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "security").Logger()}
}

// LogEvent writes event. Failures are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.Account != "" {
		e = e.Str("account", event.Account)
	}
	if event.Method != "" {
		e = e.Str("method", event.Method)
	}
	if event.Path != "" {
		e = e.Str("path", event.Path)
	}
	if event.Role != "" {
		e = e.Str("role", event.Role)
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// LogLoginSuccess records a successful password login.
func (l *SecurityLogger) LogLoginSuccess(account, ip string) {
	l.LogEvent(&SecurityEvent{Event: "login_success", Account: account, IPAddress: ip, Success: true})
}

// LogLoginFailure records a rejected password login.
func (l *SecurityLogger) LogLoginFailure(account, ip, reason string) {
	l.LogEvent(&SecurityEvent{Event: "login_failure", Account: account, IPAddress: ip, Error: reason})
}

// LogPermissionDenied records a request refused by the authorization layer.
func (l *SecurityLogger) LogPermissionDenied(account, method, path, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "permission_denied",
		Account:   account,
		Method:    method,
		Path:      path,
		IPAddress: ip,
	})
}

// LogDirectoryChange records a role or user mutation made through the API.
func (l *SecurityLogger) LogDirectoryChange(actor, kind, name, op string) {
	l.LogEvent(&SecurityEvent{
		Event:   "directory_change",
		Account: actor,
		Success: true,
		Details: map[string]string{"kind": kind, "name": name, "op": op},
	})
}

// LogPolicyReload records an operator-triggered policy reload.
func (l *SecurityLogger) LogPolicyReload(actor string, err error) {
	event := &SecurityEvent{Event: "policy_reload", Account: actor, Success: err == nil}
	if err != nil {
		event.Error = err.Error()
	}
	l.LogEvent(event)
}

// SanitizeToken masks a token, keeping the first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

var sensitiveErrorWords = []string{"password", "secret", "token", "bearer", "authorization"}

// SanitizeError replaces errors that mention credentials with a generic
// message and truncates long ones.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, word := range sensitiveErrorWords {
		if strings.Contains(lower, word) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

var sensitiveKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"password":      true,
	"password_hash": true,
	"secret":        true,
	"jwt_secret":    true,
	"authorization": true,
	"bearer":        true,
}

// SanitizeValue masks value when key names a credential.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
