// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package services adapts blocking components to suture.Service.
//
// Components that already take a context in Serve (the authorization actor,
// the change listener, the embedded NATS server) are added to the tree
// directly. HTTPServerService covers net/http's ListenAndServe/Shutdown
// pair.
package services
