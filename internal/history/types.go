// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package history

import (
	"context"
	"time"
)

// Outcome is the result of one policy load.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one policy load attempt. On failure the counts and Version
// describe the snapshot that stayed installed.
type Entry struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Outcome      Outcome       `json:"outcome"`
	Version      uint64        `json:"version"`
	Roles        int           `json:"roles"`
	Users        int           `json:"users"`
	Rules        int           `json:"rules"`
	SkippedRules int           `json:"skipped_rules"`
	Duration     time.Duration `json:"duration_ns"`
	Error        string        `json:"error,omitempty"`
}

// QueryFilter narrows a history query. Zero fields match everything.
type QueryFilter struct {
	Outcomes []Outcome
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
}

// Store persists history entries. Query returns newest first.
type Store interface {
	Save(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter QueryFilter) ([]Entry, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}
