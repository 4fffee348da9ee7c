// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package api provides the HTTP surface of Warden.

Routes:

	GET    /health                     liveness and installed policy version
	GET    /metrics                    Prometheus metrics
	POST   /api/v1/auth/login          account and password in, bearer token out

	POST   /api/v1/authz/check         ask whether an account may call method+path
	POST   /api/v1/authz/reload        rebuild the policy and wait for the result
	GET    /api/v1/authz/status        installed policy generation
	GET    /api/v1/authz/history       past reloads, newest first

	GET    /api/v1/roles               list roles
	GET    /api/v1/roles/{name}        fetch one role
	PUT    /api/v1/roles/{name}        create or replace a role
	DELETE /api/v1/roles/{name}        delete a role
	GET    /api/v1/users               list users
	GET    /api/v1/users/{account}     fetch one user
	PUT    /api/v1/users/{account}     create or replace a user
	DELETE /api/v1/users/{account}     delete a user

Everything under /api/v1 except login requires a bearer token and is then
gated by the authorization actor itself: the caller's role must grant the
request's method and path. Warden therefore protects its own admin API with
the same rules it serves to other services.

Directory writes go to the store first, then ask the actor for a
reply-tracked reload, then publish a change event so other instances reload
too. The write is not rolled back when the reload or the publish fails; the
response reports which steps completed.

All responses use the models.APIResponse envelope.
*/
package api
