// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package config loads and validates Warden's configuration.
//
// Configuration is layered with koanf:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: CONFIG_PATH, then config.yaml/config.yml in the
//     working directory, then /etc/warden/config.yaml
//  3. Environment variables, mapped explicitly by envTransformFunc;
//     variables without a mapping are ignored
//
// Later layers override earlier ones. Comma-separated environment values
// for slice fields (CORS_ORIGINS) are split after loading, and the result is
// checked by Config.Validate before it is returned.
//
// # Sections
//
//   - server: listen address, timeouts and environment (development, production)
//   - security: JWT signing, CORS, rate limiting, bcrypt cost
//   - authz: actor mailbox, reload timeout, decision cache, bypass subject
//   - directory: role and user store backend, seed file, circuit breaker
//   - nats: change notification transport and embedded server
//   - logging: zerolog level and format
//   - supervisor: suture failure thresholds and shutdown timeout
//
// # Production checks
//
// With ENVIRONMENT=production, Validate additionally requires a JWT secret of
// at least 32 characters, refuses wildcard CORS origins and refuses any
// authorization bypass subject.
//
// PasswordPolicy checks passwords given to the user API and the seed file.
package config
