// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/middleware"
)

// PermissionChecker answers permission checks. Handle implements it.
type PermissionChecker interface {
	CheckPermission(ctx context.Context, account, method, path string) (bool, error)
}

// Middleware gates HTTP requests on the authorization actor.
type Middleware struct {
	checker  PermissionChecker
	security *logging.SecurityLogger
}

// NewMiddleware creates authorization middleware backed by checker.
func NewMiddleware(checker PermissionChecker) *Middleware {
	return &Middleware{
		checker:  checker,
		security: logging.NewSecurityLogger(),
	}
}

// RequirePermission lets a request through only when the authenticated
// account may perform the request's method on its path. It must run after
// auth.RequireAuth.
//
// A failure to reach the actor denies the request with 500 rather than
// guessing an answer.
func (m *Middleware) RequirePermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account, ok := auth.AccountFromContext(ctx)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		method := strings.ToUpper(r.Method)
		path := r.URL.Path

		allowed, err := m.checker.CheckPermission(ctx, account, method, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logging.Ctx(ctx).Error().Err(err).
				Str("account", account).
				Str("method", method).
				Str("path", path).
				Msg("Permission check failed")
			middleware.WriteError(w, http.StatusInternalServerError, "AUTHZ_UNAVAILABLE", "system error")
			return
		}

		if !allowed {
			m.security.LogPermissionDenied(account, method, path, r.RemoteAddr)
			middleware.WriteError(w, http.StatusForbidden, "PERMISSION_DENIED", "permission denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}
