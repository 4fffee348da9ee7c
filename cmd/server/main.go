// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/warden/internal/api"
	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/supervisor"
	"github.com/tomtom215/warden/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // sequential startup
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("directory_backend", cfg.Directory.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("history_enabled", cfg.History.Enabled).
		Msg("Starting Warden")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS before exposing the admin API")
	}
	if cfg.Authz.BypassSubject != "" {
		logging.Warn().Str("account", cfg.Authz.BypassSubject).Msg("Authorization bypass account is configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DIRECTORY ===

	store, err := directory.Open(ctx, cfg.Directory)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open directory")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing directory")
		}
	}()

	passwordPolicy := config.DefaultPasswordPolicy()
	if cfg.IsProduction() {
		passwordPolicy = config.StrictPasswordPolicy()
	}

	if cfg.Directory.SeedPath != "" {
		seed, err := directory.LoadSeed(cfg.Directory.SeedPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load directory seed")
		}
		if err := directory.ApplySeed(ctx, store, seed, directory.SeedOptions{
			BcryptCost: cfg.Security.BcryptCost,
			Policy:     passwordPolicy,
		}); err != nil {
			logging.Fatal().Err(err).Msg("Failed to apply directory seed")
		}
		logging.Info().
			Str("path", cfg.Directory.SeedPath).
			Int("roles", len(seed.Roles)).
			Int("users", len(seed.Users)).
			Msg("Directory seeded")
	}

	// === RELOAD HISTORY ===

	reloads, err := InitHistory(ctx, cfg.History)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize reload history")
	}
	defer reloads.Close()

	// === AUTHORIZATION ===

	// Startup without an initial policy is fatal.
	enforcer, err := authz.NewEnforcer(ctx, store, store, authz.EnforcerConfig{
		CacheEnabled:  cfg.Authz.CacheEnabled,
		CacheTTL:      cfg.Authz.CacheTTL,
		BypassSubject: cfg.Authz.BypassSubject,
		Observer:      reloads.Observer(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load initial policy")
	}
	actor := authz.NewActor(enforcer, authz.ActorConfig{
		MailboxSize:   cfg.Authz.MailboxSize,
		ReloadTimeout: cfg.Authz.ReloadTimeout,
	})
	handle := actor.Handle()

	status := enforcer.Status()
	logging.Info().
		Uint64("policy_version", status.Version).
		Int("roles", status.Roles).
		Int("users", status.Users).
		Int("rules", status.Rules).
		Msg("Initial policy loaded")

	// === CHANGE NOTIFICATIONS ===

	notifier, err := InitNotify(cfg, handle)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize change notifications")
	}
	defer notifier.Close(context.Background())

	// === HTTP ===

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	handler, err := api.NewHandler(api.HandlerConfig{
		Store:          store,
		Authz:          handle,
		Tokens:         jwtManager,
		Publisher:      notifier.Publisher(),
		History:        reloads.History(),
		PasswordPolicy: passwordPolicy,
		BcryptCost:     cfg.Security.BcryptCost,
		Version:        version,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	chiMw := api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security))
	router := api.NewRouter(handler, jwtManager, handle, chiMw)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerWithComponent("supervisor"), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAuthzService(actor)
	notifier.AddToSupervisor(tree)
	reloads.AddToSupervisor(tree)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	stop()

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Warden stopped")
}
