// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/history"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/notify"
)

// Authorizer is the part of authz.Handle the handlers use.
type Authorizer interface {
	authz.PermissionChecker
	Reset(ctx context.Context) error
	Status(ctx context.Context) (authz.SnapshotStatus, error)
}

// TokenIssuer issues bearer tokens. *auth.JWTManager implements it.
type TokenIssuer interface {
	GenerateToken(account string) (string, time.Time, error)
}

// ChangePublisher announces directory changes to other instances.
// *notify.Publisher implements it.
type ChangePublisher interface {
	Publish(ctx context.Context, kind notify.Kind, name string, op notify.Op) error
}

// ReloadHistory answers queries over past policy reloads.
// *history.Recorder implements it.
type ReloadHistory interface {
	Query(ctx context.Context, filter history.QueryFilter) ([]history.Entry, int64, error)
}

// HandlerConfig wires a Handler. Publisher and History may be nil.
type HandlerConfig struct {
	Store     directory.Store
	Authz     Authorizer
	Tokens    TokenIssuer
	Publisher ChangePublisher
	History   ReloadHistory

	PasswordPolicy config.PasswordPolicy
	BcryptCost     int

	// Version is reported by /health.
	Version string
}

// Handler serves the HTTP API.
type Handler struct {
	store     directory.Store
	authz     Authorizer
	tokens    TokenIssuer
	publisher ChangePublisher
	security  *logging.SecurityLogger
	history   ReloadHistory

	passwordPolicy config.PasswordPolicy
	bcryptCost     int
	version        string
	startTime      time.Time

	// dummyHash is compared against on unknown accounts so a failed login
	// takes the same time whether or not the account exists.
	dummyHash string
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil || cfg.Authz == nil || cfg.Tokens == nil {
		return nil, fmt.Errorf("handler requires a store, an authorizer and a token issuer")
	}

	dummy, err := auth.HashPassword("warden-unknown-account", cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	reloads := cfg.History
	if reloads == nil {
		reloads = emptyHistory{}
	}

	return &Handler{
		store:          cfg.Store,
		authz:          cfg.Authz,
		tokens:         cfg.Tokens,
		publisher:      cfg.Publisher,
		security:       logging.NewSecurityLogger(),
		history:        reloads,
		passwordPolicy: cfg.PasswordPolicy,
		bcryptCost:     cfg.BcryptCost,
		version:        cfg.Version,
		startTime:      time.Now(),
		dummyHash:      dummy,
	}, nil
}

// emptyHistory is used when reload history is disabled.
type emptyHistory struct{}

func (emptyHistory) Query(context.Context, history.QueryFilter) ([]history.Entry, int64, error) {
	return nil, 0, nil
}
