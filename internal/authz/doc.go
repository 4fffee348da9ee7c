// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package authz decides whether an account may perform an HTTP method on a
// path.
//
// # Model
//
// A Role is a named list of permission rules; each rule pairs a method (or
// "*") with a path pattern. A User is assigned exactly one role by name.
// Patterns are slash-separated and anchored at both ends:
//
//	/roles          literal segments only
//	/roles/:id      ":id" matches exactly one non-empty segment
//	/api/*          "*" matches zero or more segments
//
// Rules are compiled into a casbin model (see model.conf) where users are
// linked to roles by grouping policies and each rule is evaluated by the
// ruleMatch function, which calls CompiledRule.Matches. Malformed patterns are logged and skipped at load
// time; they never abort a reload.
//
// # Snapshots
//
// Enforcer.LoadPolicies reads every role and user through the RoleFinder and
// UserFinder ports and compiles them into a new immutable snapshot, which
// replaces the current one in a single atomic store. A failed fetch leaves
// the current snapshot installed and reports a *DirectoryError
// (DirectoryUnavailable or DirectoryDecode). Check reads the installed
// snapshot and never does I/O.
//
// # Actor
//
// In the running service one Actor owns the Enforcer. Requests arrive over a
// bounded mailbox (100 messages by default) and are processed one at a time
// in arrival order:
//
//	actor := authz.NewActor(enforcer, authz.DefaultActorConfig())
//	supervisor.Add(actor)
//
//	h := actor.Handle()
//	allowed, err := h.CheckPermission(ctx, "alice", "DELETE", "/roles/9")
//	err = h.Reset(ctx)
//
// A Handle that cannot enqueue returns ErrSendFailed; one whose request was
// accepted but never answered returns ErrNoReply. Callers treat both as a
// denial.
//
// # Metrics
//
// Decisions, cache activity, reloads and actor communication failures are
// exported as warden_authz_* Prometheus metrics (see metrics.go).
package authz
