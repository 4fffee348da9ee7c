// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/warden/internal/middleware"
	"github.com/tomtom215/warden/internal/models"
)

const healthTimeout = 2 * time.Second

// Health reports whether the authorization actor is answering. It always
// returns 200 while the process serves HTTP; Status is "degraded" when the
// actor does not reply.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	health := models.HealthStatus{
		Status:  "healthy",
		Uptime:  time.Since(h.startTime).Seconds(),
		Version: h.version,
	}

	status, err := h.authz.Status(ctx)
	if err != nil {
		health.Status = "degraded"
	} else {
		health.PolicyVersion = status.Version
	}

	middleware.WriteJSON(w, http.StatusOK, health)
}
