// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/models"
	"github.com/tomtom215/warden/internal/validation"
)

// Seed is the content of a seed file:
//
//	roles:
//	  - name: admin
//	    permissions:
//	      - method: "*"
//	        path: /api/v1/*
//	users:
//	  - account: alice
//	    role_name: admin
//	    password: change-me-1
type Seed struct {
	Roles []models.Role `koanf:"roles" validate:"dive"`
	Users []SeedUser    `koanf:"users" validate:"dive"`
}

// SeedUser is a user entry. Password is hashed on apply; PasswordHash is
// stored as given. Setting neither creates a user who cannot log in.
type SeedUser struct {
	Account      string `koanf:"account" validate:"required,max=128,printascii"`
	RoleName     string `koanf:"role_name" validate:"required,rolename"`
	Password     string `koanf:"password" validate:"excluded_with=PasswordHash"`
	PasswordHash string `koanf:"password_hash"`
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load seed file %s: %w", path, err)
	}

	var seed Seed
	if err := k.Unmarshal("", &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file %s: %w", path, err)
	}
	if verr := validation.ValidateStruct(&seed); verr != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, verr)
	}
	return &seed, nil
}

// SeedOptions controls how plain-text seed passwords are handled.
type SeedOptions struct {
	BcryptCost int
	Policy     config.PasswordPolicy
}

// ApplySeed upserts every role and then every user of seed into store.
// Existing records with the same key are replaced.
func ApplySeed(ctx context.Context, store Store, seed *Seed, opts SeedOptions) error {
	for _, role := range seed.Roles {
		if err := store.UpsertRole(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}

	for _, su := range seed.Users {
		user := models.User{Account: su.Account, RoleName: su.RoleName, PasswordHash: su.PasswordHash}
		if su.Password != "" {
			if err := opts.Policy.Validate(su.Password, su.Account); err != nil {
				return fmt.Errorf("seed user %s: %w", su.Account, err)
			}
			hash, err := auth.HashPassword(su.Password, opts.BcryptCost)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", su.Account, err)
			}
			user.PasswordHash = hash
		}
		if err := store.UpsertUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", su.Account, err)
		}
	}

	logging.Info().Int("roles", len(seed.Roles)).Int("users", len(seed.Users)).Msg("Directory seeded")
	return nil
}
