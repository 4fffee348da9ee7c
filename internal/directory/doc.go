// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package directory stores the roles and users that the authorization engine
builds its policy snapshots from.

Every backend implements Store, which satisfies authz.RoleFinder and
authz.UserFinder so a Store can be handed straight to authz.NewEnforcer.

Backends:

  - MemoryStore: map-backed, with fault injection for tests
  - BadgerStore: embedded key-value store, keys "role:<name>" and
    "user:<account>" holding JSON records
  - DuckDBStore: embedded SQL database with roles and users tables

The badger and duckdb backends delete softly: the record is kept with a
deletion marker and no longer returned by the Find methods. Read failures are reported as
*authz.DirectoryError so that a failed reload keeps the previous snapshot.

BreakerStore wraps any backend with a circuit breaker around the two list
reads. While the circuit is open, reloads fail immediately with an
Unavailable error instead of waiting on a broken backend.

Open builds the configured backend:

	store, err := directory.Open(ctx, cfg.Directory)
	if err != nil {
		return err
	}
	defer store.Close()

	enforcer, err := authz.NewEnforcer(ctx, store, store, authz.DefaultEnforcerConfig())
*/
package directory
