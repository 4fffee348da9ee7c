// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/goccy/go-json"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/models"
)

const backendDuckDB = "duckdb"

const duckDBSchema = `
	CREATE TABLE IF NOT EXISTS roles (
		name TEXT PRIMARY KEY,
		permissions TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		account TEXT PRIMARY KEY,
		role_name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL
	);
`

// DuckDBStore is a Store on an embedded DuckDB database.
type DuckDBStore struct {
	db *sql.DB
}

// OpenDuckDB opens the database at path (":memory:" for an in-memory
// database) and creates the schema.
func OpenDuckDB(ctx context.Context, path string) (*DuckDBStore, error) {
	connStr := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open DuckDB: %w", err)
	}

	s := NewDuckDBStore(db)
	if err := s.CreateTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Info().Str("path", path).Msg("DuckDB directory opened")
	return s, nil
}

// NewDuckDBStore wraps an open database. The caller must run CreateTables
// unless the schema already exists.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTables creates the roles and users tables if they do not exist.
func (s *DuckDBStore) CreateTables(ctx context.Context) error {
	for _, stmt := range strings.Split(duckDBSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *DuckDBStore) FindAllRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, permissions FROM roles WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, observe(backendDuckDB, opFindAllRoles, authz.Unavailable(opFindAllRoles, err))
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var name, perms string
		if err := rows.Scan(&name, &perms); err != nil {
			return nil, observe(backendDuckDB, opFindAllRoles, authz.Unavailable(opFindAllRoles, err))
		}
		role := models.Role{Name: name}
		if err := json.Unmarshal([]byte(perms), &role.Permissions); err != nil {
			return nil, observe(backendDuckDB, opFindAllRoles,
				authz.Decode(opFindAllRoles, fmt.Errorf("role %s permissions: %w", name, err)))
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, observe(backendDuckDB, opFindAllRoles, authz.Unavailable(opFindAllRoles, err))
	}
	return roles, observe(backendDuckDB, opFindAllRoles, nil)
}

func (s *DuckDBStore) FindAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account, role_name, password_hash FROM users WHERE is_active ORDER BY account`)
	if err != nil {
		return nil, observe(backendDuckDB, opFindAllUsers, authz.Unavailable(opFindAllUsers, err))
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Account, &u.RoleName, &u.PasswordHash); err != nil {
			return nil, observe(backendDuckDB, opFindAllUsers, authz.Unavailable(opFindAllUsers, err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, observe(backendDuckDB, opFindAllUsers, authz.Unavailable(opFindAllUsers, err))
	}
	return users, observe(backendDuckDB, opFindAllUsers, nil)
}

func (s *DuckDBStore) FindRole(ctx context.Context, name string) (models.Role, error) {
	var perms string
	err := s.db.QueryRowContext(ctx,
		`SELECT permissions FROM roles WHERE name = ? AND is_active`, name).Scan(&perms)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Role{}, ErrNotFound
	}
	if err != nil {
		return models.Role{}, fmt.Errorf("find role %s: %w", name, err)
	}

	role := models.Role{Name: name}
	if err := json.Unmarshal([]byte(perms), &role.Permissions); err != nil {
		return models.Role{}, authz.Decode(opFindRole, err)
	}
	return role, nil
}

func (s *DuckDBStore) FindUser(ctx context.Context, account string) (models.User, error) {
	u := models.User{Account: account}
	err := s.db.QueryRowContext(ctx,
		`SELECT role_name, password_hash FROM users WHERE account = ? AND is_active`, account).
		Scan(&u.RoleName, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user %s: %w", account, err)
	}
	return u, nil
}

func (s *DuckDBStore) UpsertRole(ctx context.Context, role models.Role) error {
	if err := requireKey("role name", role.Name); err != nil {
		return err
	}
	perms := role.Permissions
	if perms == nil {
		perms = []models.PermissionRule{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roles (name, permissions, is_active, updated_at) VALUES (?, ?, TRUE, ?)
		ON CONFLICT (name) DO UPDATE SET
			permissions = excluded.permissions,
			is_active = TRUE,
			updated_at = excluded.updated_at`,
		role.Name, string(data), now())
	if err != nil {
		err = fmt.Errorf("upsert role %s: %w", role.Name, err)
	}
	return observe(backendDuckDB, opUpsertRole, err)
}

func (s *DuckDBStore) DeleteRole(ctx context.Context, name string) error {
	return observe(backendDuckDB, opDeleteRole, s.softDelete(ctx,
		`UPDATE roles SET is_active = FALSE, updated_at = ? WHERE name = ? AND is_active`, name))
}

func (s *DuckDBStore) UpsertUser(ctx context.Context, user models.User) error {
	if err := requireKey("account", user.Account); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (account, role_name, password_hash, is_active, updated_at) VALUES (?, ?, ?, TRUE, ?)
		ON CONFLICT (account) DO UPDATE SET
			role_name = excluded.role_name,
			password_hash = excluded.password_hash,
			is_active = TRUE,
			updated_at = excluded.updated_at`,
		user.Account, user.RoleName, user.PasswordHash, now())
	if err != nil {
		err = fmt.Errorf("upsert user %s: %w", user.Account, err)
	}
	return observe(backendDuckDB, opUpsertUser, err)
}

func (s *DuckDBStore) DeleteUser(ctx context.Context, account string) error {
	return observe(backendDuckDB, opDeleteUser, s.softDelete(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = ? WHERE account = ? AND is_active`, account))
}

func (s *DuckDBStore) softDelete(ctx context.Context, query, key string) error {
	res, err := s.db.ExecContext(ctx, query, now(), key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
