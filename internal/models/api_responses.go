// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "error",
//	  "error": {"code": "PERMISSION_DENIED", "message": "permission denied"},
//	  "metadata": {"timestamp": "2026-01-02T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`

	// PolicyVersion is the snapshot generation a decision was made against,
	// when the endpoint knows it.
	PolicyVersion uint64 `json:"policy_version,omitempty"`
}

// APIError is a machine-readable error code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Account  string `json:"account" validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

// LoginResponse carries an issued access token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   string    `json:"account"`
}

// CheckRequest is the body of POST /api/v1/authz/check.
type CheckRequest struct {
	Account string `json:"account" validate:"required,max=128,printascii"`
	Method  string `json:"method" validate:"required,httpmethod"`
	Path    string `json:"path" validate:"required,startswith=/,max=2048"`
}

// CheckResponse answers a CheckRequest.
type CheckResponse struct {
	Account string `json:"account"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

// RoleRequest is the body of PUT /api/v1/roles/{name}.
type RoleRequest struct {
	Permissions []PermissionRule `json:"permissions" validate:"max=1024,dive"`
}

// UserRequest is the body of PUT /api/v1/users/{account}. An empty Password
// keeps the stored hash.
type UserRequest struct {
	RoleName string `json:"role_name" validate:"required,rolename"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=256"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	PolicyVersion uint64  `json:"policy_version"`
	Uptime        float64 `json:"uptime_seconds"`
	Version       string  `json:"version"`
}

// ChangeResult reports a directory write and the reload that followed it.
// Reloaded is false when the write was stored but the policy could not be
// rebuilt; the previous policy stays in force until the next reload.
type ChangeResult struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Op       string `json:"op"`
	Reloaded bool   `json:"reloaded"`
	Notified bool   `json:"notified"`
}

// UserResponse is the API view of a User.
type UserResponse struct {
	Account     string `json:"account"`
	RoleName    string `json:"role_name"`
	HasPassword bool   `json:"has_password"`
}

// NewUserResponse builds the API view of u.
func NewUserResponse(u User) UserResponse {
	return UserResponse{
		Account:     u.Account,
		RoleName:    u.RoleName,
		HasPassword: u.PasswordHash != "",
	}
}
