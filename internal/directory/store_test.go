// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/models"
)

// backends opens one fresh store per backend.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	badgerStore, err := OpenBadger(filepath.Join(t.TempDir(), "directory"))
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	duckStore, err := OpenDuckDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenDuckDB() error = %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
		"duckdb": duckStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func adminRole() models.Role {
	return models.Role{Name: "admin", Permissions: []models.PermissionRule{
		{Module: "roles", Method: "*", Path: "/api/v1/roles/:name", Description: "manage roles"},
		{Method: "GET", Path: "/api/v1/*"},
	}}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.UpsertRole(ctx, adminRole()); err != nil {
				t.Fatalf("UpsertRole() error = %v", err)
			}
			if err := s.UpsertRole(ctx, models.Role{Name: "viewer"}); err != nil {
				t.Fatalf("UpsertRole() error = %v", err)
			}
			if err := s.UpsertUser(ctx, models.User{Account: "bob", RoleName: "viewer"}); err != nil {
				t.Fatalf("UpsertUser() error = %v", err)
			}
			if err := s.UpsertUser(ctx, models.User{Account: "alice", RoleName: "admin", PasswordHash: "$2a$hash"}); err != nil {
				t.Fatalf("UpsertUser() error = %v", err)
			}

			roles, err := s.FindAllRoles(ctx)
			if err != nil {
				t.Fatalf("FindAllRoles() error = %v", err)
			}
			if len(roles) != 2 || roles[0].Name != "admin" || roles[1].Name != "viewer" {
				t.Fatalf("FindAllRoles() = %+v, want admin then viewer", roles)
			}
			if len(roles[0].Permissions) != 2 || roles[0].Permissions[0] != adminRole().Permissions[0] {
				t.Errorf("admin permissions = %+v", roles[0].Permissions)
			}
			if len(roles[1].Permissions) != 0 {
				t.Errorf("viewer permissions = %+v, want none", roles[1].Permissions)
			}

			users, err := s.FindAllUsers(ctx)
			if err != nil {
				t.Fatalf("FindAllUsers() error = %v", err)
			}
			if len(users) != 2 || users[0].Account != "alice" || users[1].Account != "bob" {
				t.Fatalf("FindAllUsers() = %+v, want alice then bob", users)
			}
			if users[0].PasswordHash != "$2a$hash" {
				t.Errorf("alice PasswordHash = %q", users[0].PasswordHash)
			}

			u, err := s.FindUser(ctx, "alice")
			if err != nil || u.RoleName != "admin" {
				t.Errorf("FindUser(alice) = %+v, %v", u, err)
			}
			r, err := s.FindRole(ctx, "admin")
			if err != nil || len(r.Permissions) != 2 {
				t.Errorf("FindRole(admin) = %+v, %v", r, err)
			}
		})
	}
}

func TestStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.UpsertUser(ctx, models.User{Account: "carol", RoleName: "viewer"})
			if err := s.UpsertUser(ctx, models.User{Account: "carol", RoleName: "admin"}); err != nil {
				t.Fatalf("UpsertUser() error = %v", err)
			}
			users, _ := s.FindAllUsers(ctx)
			if len(users) != 1 || users[0].RoleName != "admin" {
				t.Errorf("FindAllUsers() = %+v, want carol as admin", users)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.UpsertRole(ctx, adminRole())
			_ = s.UpsertUser(ctx, models.User{Account: "alice", RoleName: "admin"})

			if err := s.DeleteRole(ctx, "admin"); err != nil {
				t.Fatalf("DeleteRole() error = %v", err)
			}
			if err := s.DeleteUser(ctx, "alice"); err != nil {
				t.Fatalf("DeleteUser() error = %v", err)
			}

			roles, _ := s.FindAllRoles(ctx)
			users, _ := s.FindAllUsers(ctx)
			if len(roles) != 0 || len(users) != 0 {
				t.Errorf("after delete: roles=%+v users=%+v, want none", roles, users)
			}
			if _, err := s.FindRole(ctx, "admin"); !errors.Is(err, ErrNotFound) {
				t.Errorf("FindRole() error = %v, want ErrNotFound", err)
			}
			if _, err := s.FindUser(ctx, "alice"); !errors.Is(err, ErrNotFound) {
				t.Errorf("FindUser() error = %v, want ErrNotFound", err)
			}
			if err := s.DeleteRole(ctx, "admin"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second DeleteRole() error = %v, want ErrNotFound", err)
			}
			if err := s.DeleteUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteUser(nobody) error = %v, want ErrNotFound", err)
			}

			// Upsert revives a deleted record.
			if err := s.UpsertRole(ctx, adminRole()); err != nil {
				t.Fatalf("UpsertRole() error = %v", err)
			}
			if roles, _ := s.FindAllRoles(ctx); len(roles) != 1 {
				t.Errorf("after revive: roles=%+v, want admin", roles)
			}
		})
	}
}

func TestStore_RequiresKey(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.UpsertRole(ctx, models.Role{}); err == nil {
				t.Error("UpsertRole() with empty name should fail")
			}
			if err := s.UpsertUser(ctx, models.User{RoleName: "admin"}); err == nil {
				t.Error("UpsertUser() with empty account should fail")
			}
		})
	}
}

func TestStore_FeedsEnforcer(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.UpsertRole(ctx, adminRole())
			_ = s.UpsertUser(ctx, models.User{Account: "alice", RoleName: "admin"})

			e, err := authz.NewEnforcer(ctx, s, s, authz.DefaultEnforcerConfig())
			if err != nil {
				t.Fatalf("NewEnforcer() error = %v", err)
			}
			t.Cleanup(e.Close)

			if !e.Check("alice", "DELETE", "/api/v1/roles/viewer") {
				t.Error("alice should be allowed DELETE /api/v1/roles/viewer")
			}
			if e.Check("alice", "POST", "/api/v1/users") {
				t.Error("alice should be denied POST /api/v1/users")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		cfg         config.DirectoryConfig
		wantBreaker bool
		wantErr     bool
	}{
		{name: "memory", cfg: config.DirectoryConfig{Backend: config.BackendMemory}},
		{name: "badger", cfg: config.DirectoryConfig{Backend: config.BackendBadger, BadgerPath: t.TempDir()}},
		{name: "duckdb", cfg: config.DirectoryConfig{Backend: config.BackendDuckDB, DuckDBPath: ":memory:"}},
		{
			name:        "breaker",
			cfg:         config.DirectoryConfig{Backend: config.BackendMemory, BreakerEnabled: true, BreakerMaxFailures: 2},
			wantBreaker: true,
		},
		{name: "unknown", cfg: config.DirectoryConfig{Backend: "ldap"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Open() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })

			_, isBreaker := s.(*BreakerStore)
			if isBreaker != tt.wantBreaker {
				t.Errorf("Open() returned %T, breaker = %v, want %v", s, isBreaker, tt.wantBreaker)
			}
			if _, err := s.FindAllRoles(ctx); err != nil {
				t.Errorf("FindAllRoles() error = %v", err)
			}
		})
	}
}
