// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/middleware"
	"github.com/tomtom215/warden/internal/models"
)

// AuthzCheck answers whether an account may call a method and path. It is
// the decision endpoint other services query.
func (h *Handler) AuthzCheck(w http.ResponseWriter, r *http.Request) {
	var req models.CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	method := models.NormalizeMethod(req.Method)
	allowed, err := h.authz.CheckPermission(r.Context(), req.Account, method, req.Path)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, models.CheckResponse{
		Account: req.Account,
		Method:  method,
		Path:    req.Path,
		Allowed: allowed,
	})
}

// AuthzReload rebuilds the policy from the directory and waits for the
// outcome. A failed reload leaves the previous policy installed.
func (h *Handler) AuthzReload(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.AccountFromContext(r.Context())

	err := h.authz.Reset(r.Context())
	h.security.LogPolicyReload(actor, err)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.AuthzStatus(w, r)
}

// AuthzStatus reports the installed policy generation.
func (h *Handler) AuthzStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.authz.Status(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, status)
}
