// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/middleware"
	"github.com/tomtom215/warden/internal/models"
)

// Login exchanges an account and password for a bearer token.
//
// Unknown accounts, accounts without a password and wrong passwords all
// produce the same 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.store.FindUser(r.Context(), req.Account)
	switch {
	case errors.Is(err, directory.ErrNotFound):
		auth.VerifyPassword(h.dummyHash, req.Password)
		h.security.LogLoginFailure(req.Account, r.RemoteAddr, "unknown account")
		respondError(w, r, http.StatusUnauthorized, codeInvalidCredentials, "invalid account or password", nil)
		return
	case err != nil:
		respondFailure(w, r, err)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		h.security.LogLoginFailure(req.Account, r.RemoteAddr, "bad password")
		respondError(w, r, http.StatusUnauthorized, codeInvalidCredentials, "invalid account or password", nil)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.Account)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to issue token", err)
		return
	}

	h.security.LogLoginSuccess(user.Account, r.RemoteAddr)
	middleware.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   user.Account,
	})
}
