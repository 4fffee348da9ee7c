// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/middleware"
	"github.com/tomtom215/warden/internal/models"
	"github.com/tomtom215/warden/internal/notify"
)

// ListRoles returns every active role.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.FindAllRoles(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if roles == nil {
		roles = []models.Role{}
	}
	middleware.WriteJSON(w, http.StatusOK, roles)
}

// GetRole returns one role.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.store.FindRole(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, role)
}

// PutRole creates or replaces a role.
func (h *Handler) PutRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role := models.Role{Name: chi.URLParam(r, "name"), Permissions: req.Permissions}
	if role.Permissions == nil {
		role.Permissions = []models.PermissionRule{}
	}
	if apiErr := validateRequest(&role); apiErr != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.store.UpsertRole(r.Context(), role); err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.applyChange(r, notify.KindRole, role.Name, notify.OpUpsert))
}

// DeleteRole deletes a role. Users still assigned to it are denied
// everything until they are moved to another role.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.DeleteRole(r.Context(), name); err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.applyChange(r, notify.KindRole, name, notify.OpDelete))
}

// ListUsers returns every active user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.FindAllUsers(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserResponse(u))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

// GetUser returns one user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.FindUser(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

// PutUser creates or replaces a user. The role must exist. An empty
// password keeps the stored hash.
func (h *Handler) PutUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := models.User{Account: chi.URLParam(r, "account"), RoleName: req.RoleName}
	if apiErr := validateRequest(&user); apiErr != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.store.FindRole(ctx, user.RoleName); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			err = errUnknownRole
		}
		respondFailure(w, r, err)
		return
	}

	if req.Password != "" {
		if err := h.passwordPolicy.Validate(req.Password, user.Account); err != nil {
			respondError(w, r, http.StatusBadRequest, codeWeakPassword, err.Error(), nil)
			return
		}
		hash, err := auth.HashPassword(req.Password, h.bcryptCost)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to hash password", err)
			return
		}
		user.PasswordHash = hash
	} else {
		existing, err := h.store.FindUser(ctx, user.Account)
		switch {
		case err == nil:
			user.PasswordHash = existing.PasswordHash
		case !errors.Is(err, directory.ErrNotFound):
			respondFailure(w, r, err)
			return
		}
	}

	if err := h.store.UpsertUser(ctx, user); err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.applyChange(r, notify.KindUser, user.Account, notify.OpUpsert))
}

// DeleteUser deletes a user.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if err := h.store.DeleteUser(r.Context(), account); err != nil {
		respondFailure(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.applyChange(r, notify.KindUser, account, notify.OpDelete))
}

// applyChange runs after a successful directory write: log it, reload the
// local policy, then tell other instances. Reload and publish failures are
// reported in the result, not as request errors, since the write is stored.
func (h *Handler) applyChange(r *http.Request, kind notify.Kind, name string, op notify.Op) models.ChangeResult {
	ctx := r.Context()
	actor, _ := auth.AccountFromContext(ctx)
	h.security.LogDirectoryChange(actor, string(kind), name, string(op))

	result := models.ChangeResult{Kind: string(kind), Name: name, Op: string(op)}

	err := h.authz.Reset(ctx)
	h.security.LogPolicyReload(actor, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("kind", string(kind)).
			Str("name", sanitizeLogValue(name)).
			Msg("Policy reload after directory change failed")
	} else {
		result.Reloaded = true
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, kind, name, op); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("kind", string(kind)).
				Str("name", sanitizeLogValue(name)).
				Msg("Failed to publish directory change")
		} else {
			result.Notified = true
		}
	}

	return result
}
