// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
	"github.com/tomtom215/warden/internal/models"
)

var (
	// ErrNotFound is returned when a role or user does not exist or was deleted.
	ErrNotFound = errors.New("directory: not found")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("directory: store closed")
)

// Operation names used in errors, logs and metrics.
const (
	opFindAllRoles = "find_all_roles"
	opFindAllUsers = "find_all_users"
	opFindRole     = "find_role"
	opFindUser     = "find_user"
	opUpsertRole   = "upsert_role"
	opDeleteRole   = "delete_role"
	opUpsertUser   = "upsert_user"
	opDeleteUser   = "delete_user"
)

// Store is the role and user directory.
//
// FindAllRoles and FindAllUsers return only active records, sorted by name
// and account. Upserts revive soft-deleted records.
type Store interface {
	authz.RoleFinder
	authz.UserFinder

	FindRole(ctx context.Context, name string) (models.Role, error)
	FindUser(ctx context.Context, account string) (models.User, error)

	UpsertRole(ctx context.Context, role models.Role) error
	DeleteRole(ctx context.Context, name string) error
	UpsertUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, account string) error

	Close() error
}

// Open builds the store selected by cfg.Backend, wrapped in a circuit
// breaker when cfg.BreakerEnabled is set.
func Open(ctx context.Context, cfg config.DirectoryConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendBadger:
		store, err = OpenBadger(cfg.BadgerPath)
	case config.BackendDuckDB:
		store, err = OpenDuckDB(ctx, cfg.DuckDBPath)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("backend", cfg.Backend).Bool("breaker", cfg.BreakerEnabled).Msg("Directory store opened")

	if !cfg.BreakerEnabled {
		return store, nil
	}
	return NewBreakerStore(store, BreakerSettings{
		Name:        "directory-" + cfg.Backend,
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
		Interval:    cfg.BreakerInterval,
	}), nil
}

// observe records a backend call and returns err unchanged.
func observe(backend, op string, err error) error {
	metrics.RecordDirectoryOperation(backend, op, err)
	return err
}

// asUnavailable wraps err as an Unavailable directory error unless it is
// already classified.
func asUnavailable(op string, err error) error {
	var de *authz.DirectoryError
	if errors.As(err, &de) {
		return de
	}
	return authz.Unavailable(op, err)
}

func sortRoles(roles []models.Role) {
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Account < users[j].Account })
}

func cloneRole(r models.Role) models.Role {
	if r.Permissions != nil {
		r.Permissions = append([]models.PermissionRule(nil), r.Permissions...)
	}
	return r
}

func requireKey(kind, key string) error {
	if key == "" {
		return fmt.Errorf("%s is required", kind)
	}
	return nil
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }
