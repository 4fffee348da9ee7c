// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/history"
)

// Error codes returned in APIError.Code.
const (
	codeInvalidRequest       = "INVALID_REQUEST"
	codeInvalidCredentials   = "INVALID_CREDENTIALS"
	codeWeakPassword         = "WEAK_PASSWORD"
	codeUnknownRole          = "UNKNOWN_ROLE"
	codeNotFound             = "NOT_FOUND"
	codeDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"
	codeDirectoryDecode      = "DIRECTORY_DECODE"
	codeAuthzUnavailable     = "AUTHZ_UNAVAILABLE"
	codeHistoryUnavailable   = "HISTORY_UNAVAILABLE"
	codeInternal             = "INTERNAL_ERROR"
)

// errUnknownRole is returned when a user references a role that does not exist.
var errUnknownRole = errors.New("role does not exist")

// classifyError maps store and actor errors onto an HTTP status and code.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "not found"
	case errors.Is(err, errUnknownRole):
		return http.StatusUnprocessableEntity, codeUnknownRole, "role does not exist"
	case errors.Is(err, authz.ErrDirectoryDecode):
		return http.StatusInternalServerError, codeDirectoryDecode, "directory data is malformed"
	case errors.Is(err, authz.ErrDirectoryUnavailable), errors.Is(err, directory.ErrClosed):
		return http.StatusServiceUnavailable, codeDirectoryUnavailable, "directory unavailable"
	case errors.Is(err, authz.ErrSendFailed), errors.Is(err, authz.ErrNoReply):
		return http.StatusServiceUnavailable, codeAuthzUnavailable, "authorization service unavailable"
	case errors.Is(err, history.ErrClosed):
		return http.StatusServiceUnavailable, codeHistoryUnavailable, "reload history unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeAuthzUnavailable, "request timed out"
	default:
		return http.StatusInternalServerError, codeInternal, "system error"
	}
}
