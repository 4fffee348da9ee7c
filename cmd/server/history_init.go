// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/warden/internal/api"
	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/history"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/supervisor"
)

// HistoryComponents holds the reload history recorder and its store.
type HistoryComponents struct {
	recorder *history.Recorder
	closer   func() error
}

// InitHistory builds the reload history. It returns nil, nil when history
// is disabled; every method is safe on a nil receiver.
func InitHistory(ctx context.Context, cfg config.HistoryConfig) (*HistoryComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Reload history disabled")
		return nil, nil
	}

	var (
		store  history.Store
		closer func() error
	)
	switch cfg.Backend {
	case config.BackendDuckDB:
		db, err := history.OpenDuckDB(ctx, cfg.DuckDBPath)
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}
		store, closer = db, db.Close
	default:
		store = history.NewMemoryStore(cfg.MemoryMaxEntries)
	}

	recorder := history.NewRecorder(store, history.Config{
		RetentionDays:   cfg.RetentionDays,
		CleanupInterval: cfg.CleanupInterval,
		BufferSize:      cfg.BufferSize,
	})

	logging.Info().
		Str("backend", cfg.Backend).
		Int("retention_days", cfg.RetentionDays).
		Msg("Reload history initialized")
	return &HistoryComponents{recorder: recorder, closer: closer}, nil
}

// Observer returns the recorder as a reload observer, or a nil interface
// when history is disabled.
func (c *HistoryComponents) Observer() authz.ReloadObserver {
	if c == nil {
		return nil
	}
	return c.recorder
}

// History returns the queryable history, or nil when disabled.
func (c *HistoryComponents) History() api.ReloadHistory {
	if c == nil {
		return nil
	}
	return c.recorder
}

// AddToSupervisor registers the retention sweeper with the API layer.
func (c *HistoryComponents) AddToSupervisor(tree *supervisor.SupervisorTree) {
	if c == nil {
		return
	}
	tree.AddAPIService(c.recorder)
	logging.Info().Msg("Reload history added to supervisor tree (API layer)")
}

// Close flushes pending entries and releases the store.
func (c *HistoryComponents) Close() {
	if c == nil {
		return
	}
	if err := c.recorder.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing reload history")
	}
	if c.closer != nil {
		if err := c.closer(); err != nil {
			logging.Warn().Err(err).Msg("Error closing history database")
		}
	}
}
