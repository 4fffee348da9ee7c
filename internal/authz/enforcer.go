// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/models"
)

// EnforcerConfig holds configuration for the policy enforcer.
type EnforcerConfig struct {
	// CacheEnabled enables the per-generation decision cache.
	CacheEnabled bool

	// CacheTTL is how long a cached decision lives.
	CacheTTL time.Duration

	// BypassSubject, when non-empty, is an account that every check grants.
	// It exists for test fixtures only; config validation refuses it in
	// production.
	BypassSubject string

	// Observer, when set, is told about every load attempt.
	Observer ReloadObserver
}

// ReloadObserver receives the outcome of each policy load. status is the
// installed snapshot afterwards: the new one on success, the kept one on
// failure. ObserveReload runs under the load lock and must not block.
type ReloadObserver interface {
	ObserveReload(status SnapshotStatus, duration time.Duration, err error)
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{
		CacheEnabled: false,
		CacheTTL:     time.Minute,
	}
}

// Enforcer owns the compiled policy snapshot and answers checks against it.
//
// LoadPolicies builds a complete new snapshot before installing it, so a
// failed or in-progress reload never affects Check. In the running service
// the Enforcer is owned by an Actor; it is still safe for concurrent use.
type Enforcer struct {
	roles  RoleFinder
	users  UserFinder
	config EnforcerConfig

	loadMu  sync.Mutex
	current atomic.Pointer[snapshot]
	cache   *decisionCache
}

// NewEnforcer creates an enforcer and performs the initial policy load.
// An error from the initial load is returned as a *DirectoryError and the
// enforcer is not usable.
func NewEnforcer(ctx context.Context, roles RoleFinder, users UserFinder, config EnforcerConfig) (*Enforcer, error) {
	if roles == nil || users == nil {
		return nil, fmt.Errorf("authz: role and user finders are required")
	}

	empty, err := emptySnapshot()
	if err != nil {
		return nil, err
	}

	e := &Enforcer{
		roles:  roles,
		users:  users,
		config: config,
	}
	e.current.Store(empty)

	if config.CacheEnabled {
		e.cache = newDecisionCache(config.CacheTTL)
	}

	if err := e.LoadPolicies(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// LoadPolicies fetches all roles and users and installs a new snapshot.
// If either fetch fails the current snapshot is kept and the error is
// returned as a *DirectoryError.
func (e *Enforcer) LoadPolicies(ctx context.Context) (err error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		RecordPolicyReload(err, duration)
		if e.config.Observer != nil {
			e.config.Observer.ObserveReload(e.Status(), duration, err)
		}
	}()

	roles, err := e.roles.FindAllRoles(ctx)
	if err != nil {
		return asDirectoryError("find_all_roles", err)
	}
	users, err := e.users.FindAllUsers(ctx)
	if err != nil {
		return asDirectoryError("find_all_users", err)
	}

	prev := e.current.Load()
	next, err := buildSnapshot(prev.version+1, roles, users)
	if err != nil {
		return fmt.Errorf("failed to build policy snapshot: %w", err)
	}

	e.current.Store(next)
	if e.cache != nil {
		e.cache.clear()
	}

	status := next.status()
	UpdateSnapshotStats(status)
	logging.Info().
		Uint64("version", status.Version).
		Int("roles", status.Roles).
		Int("users", status.Users).
		Int("rules", status.Rules).
		Int("skipped_rules", status.SkippedRules).
		Dur("duration", time.Since(start)).
		Msg("Policy snapshot installed")
	return nil
}

// Check reports whether account may perform method on path. It never does
// I/O: unknown accounts and evaluation errors both yield false.
func (e *Enforcer) Check(account, method, path string) bool {
	start := time.Now()

	if e.config.BypassSubject != "" && account == e.config.BypassSubject {
		AuthzBypassGrantsTotal.Inc()
		logging.Warn().
			Str("account", account).
			Str("method", method).
			Str("path", path).
			Msg("Permission granted through bypass subject")
		return true
	}

	snap := e.current.Load()
	method = models.NormalizeMethod(method)

	if e.cache != nil {
		if allowed, ok := e.cache.get(snap.version, account, method, path); ok {
			RecordAuthzDecision(snap.accounts[account], allowed, time.Since(start), true)
			return allowed
		}
	}

	allowed, role, err := snap.check(account, method, path)
	if err != nil {
		AuthzErrorsTotal.WithLabelValues("enforcer_error").Inc()
		logging.Error().Err(err).
			Str("account", account).
			Str("method", method).
			Str("path", path).
			Msg("Authorization evaluation failed, denying")
		allowed = false
	} else if e.cache != nil {
		e.cache.set(snap.version, account, method, path, allowed)
	}

	RecordAuthzDecision(role, allowed, time.Since(start), false)
	logging.Debug().
		Str("account", account).
		Str("role", role).
		Str("method", method).
		Str("path", path).
		Bool("allowed", allowed).
		Uint64("version", snap.version).
		Msg("Authorization decision")
	return allowed
}

// Status describes the installed snapshot.
func (e *Enforcer) Status() SnapshotStatus {
	status := e.current.Load().status()
	status.BypassEnabled = e.config.BypassSubject != ""
	return status
}

// Close releases background resources. The enforcer keeps answering checks.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.stop()
	}
}
