// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package models defines the data structures shared across Warden.

Key Components:

  - Role, PermissionRule, User: the permission model read by the
    authorization core and written by the directory
  - APIResponse, APIError, Metadata: the JSON envelope of every endpoint
  - Request and response bodies for login, permission checks and directory
    writes

Request structs carry go-playground/validator tags; internal/validation
registers the custom "rolename" and "httpmethod" rules they use.

Usage Example:

	role := models.Role{
	    Name: "editor",
	    Permissions: []models.PermissionRule{
	        {Method: "GET", Path: "/api/v1/articles/:name"},
	        {Method: models.MethodAny, Path: "/api/v1/drafts/*"},
	    },
	}

Users never serialize their PasswordHash; use NewUserResponse for API output.
*/
package models
