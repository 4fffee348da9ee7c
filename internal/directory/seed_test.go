// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/config"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

const validSeed = `
roles:
  - name: admin
    permissions:
      - method: "*"
        path: /api/v1/*
  - name: viewer
    permissions:
      - method: GET
        path: /api/v1/roles
        description: list roles
users:
  - account: alice
    role_name: admin
    password: river7stone
  - account: svc-metrics
    role_name: viewer
`

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed(writeSeed(t, validSeed))
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if len(seed.Roles) != 2 || len(seed.Users) != 2 {
		t.Fatalf("seed = %+v", seed)
	}
	if seed.Roles[0].Permissions[0].Method != "*" || seed.Roles[0].Permissions[0].Path != "/api/v1/*" {
		t.Errorf("admin rule = %+v", seed.Roles[0].Permissions[0])
	}
	if seed.Roles[1].Permissions[0].Description != "list roles" {
		t.Errorf("viewer rule = %+v", seed.Roles[1].Permissions[0])
	}
	if seed.Users[0].Password != "river7stone" {
		t.Errorf("alice password = %q", seed.Users[0].Password)
	}
}

func TestLoadSeed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"relative path", "roles:\n  - name: r\n    permissions:\n      - method: GET\n        path: api\n", "Path"},
		{"bad role name", "roles:\n  - name: \"bad role\"\n", "Name"},
		{"user without role", "users:\n  - account: alice\n", "RoleName"},
		{"password and hash", "users:\n  - account: a\n    role_name: r\n    password: x\n    password_hash: y\n", "Password"},
		{"not yaml", "roles: [", "seed file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeed(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadSeed() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("LoadSeed() on a missing file should fail")
	}
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	seed, err := LoadSeed(writeSeed(t, validSeed))
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}

	s := NewMemoryStore()
	opts := SeedOptions{BcryptCost: bcrypt.MinCost, Policy: config.DefaultPasswordPolicy()}
	if err := ApplySeed(ctx, s, seed, opts); err != nil {
		t.Fatalf("ApplySeed() error = %v", err)
	}

	roles, _ := s.FindAllRoles(ctx)
	if len(roles) != 2 {
		t.Errorf("roles = %+v, want 2", roles)
	}

	alice, err := s.FindUser(ctx, "alice")
	if err != nil {
		t.Fatalf("FindUser(alice) error = %v", err)
	}
	if !auth.VerifyPassword(alice.PasswordHash, "river7stone") {
		t.Error("alice's seeded password should verify")
	}

	svc, _ := s.FindUser(ctx, "svc-metrics")
	if svc.PasswordHash != "" {
		t.Error("svc-metrics has no password and should not be able to log in")
	}

	// Applying twice is idempotent.
	if err := ApplySeed(ctx, s, seed, opts); err != nil {
		t.Fatalf("second ApplySeed() error = %v", err)
	}
	if users, _ := s.FindAllUsers(ctx); len(users) != 2 {
		t.Errorf("users after second apply = %+v, want 2", users)
	}
}

func TestApplySeed_WeakPassword(t *testing.T) {
	seed := &Seed{Users: []SeedUser{{Account: "alice", RoleName: "admin", Password: "password"}}}
	opts := SeedOptions{BcryptCost: bcrypt.MinCost, Policy: config.DefaultPasswordPolicy()}

	err := ApplySeed(context.Background(), NewMemoryStore(), seed, opts)
	if !errors.Is(err, config.ErrWeakPassword) {
		t.Errorf("ApplySeed() error = %v, want ErrWeakPassword", err)
	}
}
