// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package auth authenticates API callers.

It answers "who is calling?" and nothing else; "may they do this?" is the job
of internal/authz.

Key Components:

  - JWTManager: HS256 token issuance and validation (golang-jwt/v5)
  - HashPassword / VerifyPassword: bcrypt password hashes for the login endpoint
  - RequireAuth: middleware that validates the bearer token and stores the
    account in the request context

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	r.Group(func(r chi.Router) {
	    r.Use(auth.RequireAuth(jwtManager))
	    r.Use(authz.NewMiddleware(handle).RequirePermission)
	    // ...
	})

	account, ok := auth.AccountFromContext(r.Context())
*/
package auth
