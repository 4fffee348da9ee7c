// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
rbac.go - Role-Based Access Control Models

Key Structures:
  - Role: named bundle of permission rules
  - PermissionRule: one allowed (method, path pattern) pair
  - User: account plus the name of its single assigned role

Path patterns use two placeholders:
  - ":name" matches exactly one non-empty path segment
  - "*" matches zero or more path segments

Roles and users are owned by the directory (internal/directory). The
authorization core (internal/authz) only ever reads them.
*/

package models

import "strings"

// MethodAny is the rule method that matches every HTTP method.
const MethodAny = "*"

// PermissionRule describes one allowed action.
type PermissionRule struct {
	// Module is an optional grouping label (e.g. "roles", "admin") used by
	// admin tooling. It plays no part in matching.
	Module string `json:"module,omitempty" koanf:"module"`

	// Method is an HTTP method or MethodAny.
	Method string `json:"method" koanf:"method" validate:"required,httpmethod"`

	// Path is the path pattern, e.g. "/api/v1/roles/:name".
	Path string `json:"path" koanf:"path" validate:"required,startswith=/,max=512"`

	Description string `json:"description,omitempty" koanf:"description" validate:"max=256"`
}

// NormalizedMethod returns the upper-cased method, leaving MethodAny untouched.
func (r PermissionRule) NormalizedMethod() string {
	return NormalizeMethod(r.Method)
}

// Role is a named, ordered list of permission rules.
type Role struct {
	Name        string           `json:"name" koanf:"name" validate:"required,rolename"`
	Permissions []PermissionRule `json:"permissions" koanf:"permissions" validate:"dive"`
}

// User maps an account to exactly one role name.
//
// PasswordHash is a bcrypt hash used by the login endpoint. It never leaves
// the process in API responses.
type User struct {
	Account      string `json:"account" koanf:"account" validate:"required,max=128,printascii"`
	RoleName     string `json:"role_name" koanf:"role_name" validate:"required,rolename"`
	PasswordHash string `json:"-" koanf:"password_hash"`
}

// NormalizeMethod upper-cases an HTTP method for comparison.
func NormalizeMethod(method string) string {
	method = strings.TrimSpace(method)
	if method == MethodAny {
		return method
	}
	return strings.ToUpper(method)
}
