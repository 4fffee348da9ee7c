// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/middleware"
)

// Router assembles the HTTP routes.
type Router struct {
	handler       *Handler
	tokens        auth.TokenValidator
	permissions   *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. Admin routes authenticate with tokens and are
// authorized through checker. A nil chiMw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, tokens auth.TokenValidator, checker authz.PermissionChecker, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		tokens:        tokens,
		permissions:   authz.NewMiddleware(checker),
		chiMiddleware: chiMw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/auth/login", router.handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(auth.RequireAuth(router.tokens))
			r.Use(router.permissions.RequirePermission)

			r.Route("/authz", func(r chi.Router) {
				r.Post("/check", router.handler.AuthzCheck)
				r.Post("/reload", router.handler.AuthzReload)
				r.Get("/status", router.handler.AuthzStatus)
				r.Get("/history", router.handler.AuthzHistory)
			})

			r.Route("/roles", func(r chi.Router) {
				r.Get("/", router.handler.ListRoles)
				r.Get("/{name}", router.handler.GetRole)
				r.Put("/{name}", router.handler.PutRole)
				r.Delete("/{name}", router.handler.DeleteRole)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", router.handler.ListUsers)
				r.Get("/{account}", router.handler.GetUser)
				r.Put("/{account}", router.handler.PutUser)
				r.Delete("/{account}", router.handler.DeleteUser)
			})
		})
	})

	return r
}
