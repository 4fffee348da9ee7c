// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package metrics holds the process-wide Prometheus collectors for the HTTP
// API, directory backends and change notifications. Authorization metrics
// live next to the code they measure in internal/authz.
//
// All collectors are registered with the default registry through promauto
// and exposed on /metrics.
package metrics
