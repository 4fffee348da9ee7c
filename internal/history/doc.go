// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package history keeps a record of policy loads: when each snapshot
// generation was installed, how large it was, and which reloads failed.
// It records generations, not decisions or callers.
//
// # Architecture
//
//	Enforcer.LoadPolicies -> Recorder.ObserveReload -> buffered chan -> writer goroutine -> Store
//
// ObserveReload runs under the enforcer's load lock, so it never blocks:
// when the buffer is full the entry is dropped and counted in
// warden_reload_history_entries_total{result="dropped"}. Close flushes
// whatever is queued.
//
// MemoryStore is a bounded in-process buffer. DuckDBStore persists entries
// in an embedded DuckDB database so history survives restarts.
//
// # Usage
//
//	store := history.NewMemoryStore(1000)
//	recorder := history.NewRecorder(store, history.DefaultConfig())
//	defer recorder.Close()
//
//	enforcer, err := authz.NewEnforcer(ctx, roles, users, authz.EnforcerConfig{
//	    Observer: recorder,
//	})
//
//	entries, total, err := recorder.Query(ctx, history.QueryFilter{
//	    Outcomes: []history.Outcome{history.OutcomeFailure},
//	    Limit:    20,
//	})
//
// Recorder also implements suture.Service: Serve deletes entries older than
// RetentionDays every CleanupInterval.
package history
