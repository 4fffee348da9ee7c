// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"context"

	"github.com/tomtom215/warden/internal/models"
)

// RoleFinder lists the active roles of the directory.
//
// Implementations should return a *DirectoryError; other errors are treated
// as DirectoryUnavailable.
type RoleFinder interface {
	FindAllRoles(ctx context.Context) ([]models.Role, error)
}

// UserFinder lists the active users of the directory, each with its current
// role name.
type UserFinder interface {
	FindAllUsers(ctx context.Context) ([]models.User, error)
}
