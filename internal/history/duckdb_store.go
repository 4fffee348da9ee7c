// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/warden/internal/logging"
)

const historySchema = `
	CREATE TABLE IF NOT EXISTS policy_reloads (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		outcome TEXT NOT NULL,
		version BIGINT NOT NULL,
		roles INTEGER NOT NULL,
		users INTEGER NOT NULL,
		rules INTEGER NOT NULL,
		skipped_rules INTEGER NOT NULL,
		duration_ns BIGINT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	)
`

const historyColumns = `id, timestamp, outcome, version, roles, users, rules, skipped_rules, duration_ns, error`

// DuckDBStore persists history in DuckDB.
type DuckDBStore struct {
	db *sql.DB
}

// OpenDuckDB opens the database at path (":memory:" for an in-memory
// database) and creates the history table.
func OpenDuckDB(ctx context.Context, path string) (*DuckDBStore, error) {
	connStr := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := NewDuckDBStore(db)
	if err := s.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Info().Str("path", path).Msg("DuckDB reload history opened")
	return s, nil
}

// NewDuckDBStore wraps an open database.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the policy_reloads table if it does not exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, strings.TrimSpace(historySchema)); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// Save inserts one entry.
func (s *DuckDBStore) Save(ctx context.Context, entry *Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_reloads (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, string(entry.Outcome), int64(entry.Version),
		entry.Roles, entry.Users, entry.Rules, entry.SkippedRules,
		entry.Duration.Nanoseconds(), entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	where, args := buildFilterConditions(filter)
	query := `SELECT ` + historyColumns + ` FROM policy_reloads` + where + ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry             Entry
			outcome           string
			version, duration int64
		)
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &outcome, &version,
			&entry.Roles, &entry.Users, &entry.Rules, &entry.SkippedRules,
			&duration, &entry.Error); err != nil {
			logging.Warn().Err(err).Msg("Failed to scan history row")
			continue
		}
		entry.Outcome = Outcome(outcome)
		entry.Version = uint64(version)
		entry.Duration = time.Duration(duration)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

// Count returns the number of matching entries, ignoring Limit and Offset.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildFilterConditions(filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policy_reloads`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// Delete removes entries older than olderThan.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM policy_reloads WHERE timestamp < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old history: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("deleted", count).Time("older_than", olderThan).Msg("Deleted old reload history")
	}
	return count, nil
}

// buildFilterConditions returns a WHERE clause (with leading space, or
// empty) and its arguments.
func buildFilterConditions(filter QueryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.Outcomes) > 0 {
		placeholders := make([]string, len(filter.Outcomes))
		for i, o := range filter.Outcomes {
			placeholders[i] = "?"
			args = append(args, string(o))
		}
		conditions = append(conditions, "outcome IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.Until)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
