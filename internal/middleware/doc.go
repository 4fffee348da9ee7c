// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package middleware provides HTTP infrastructure middleware shared by the API
router and the auth/authz layers.

Key Components:

  - RequestID: UUID request IDs propagated into the logging context
  - PrometheusMetrics: request count, latency and in-flight instrumentation,
    labelled by chi route pattern to keep cardinality bounded
  - WriteJSON / WriteError: the JSON response envelope (models.APIResponse)

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(cors, rateLimit)
	// per group: auth.RequireAuth -> authz RequirePermission -> handler
*/
package middleware
