// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package logging provides the process-wide zerolog logger for Warden.
//
// Every package logs through this one: the global logger is configured once
// from the logging section of the configuration and is then reached through
// the level helpers or through Ctx, which adds request and correlation IDs
// carried by the context.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("account", account).Msg("Policy snapshot installed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Reload failed")
//
// Libraries that want a *slog.Logger (suture's sutureslog handler, watermill's
// slog adapter) get one from NewSlogLogger, which forwards into zerolog.
//
// SecurityLogger writes authentication and authorization events under the
// "security" component and masks secrets before they reach the output.
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is silently dropped.
package logging
