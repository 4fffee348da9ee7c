// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/models"
)

const (
	backendBadger = "badger"

	rolePrefix = "role:"
	userPrefix = "user:"
)

// roleRecord is the stored form of a role.
type roleRecord struct {
	Name        string                  `json:"name"`
	Permissions []models.PermissionRule `json:"permissions"`
	UpdatedAt   time.Time               `json:"updated_at"`
	DeletedAt   *time.Time              `json:"deleted_at,omitempty"`
}

// userRecord is the stored form of a user. PasswordHash is persisted here
// even though models.User hides it from JSON responses.
type userRecord struct {
	Account      string     `json:"account"`
	RoleName     string     `json:"role_name"`
	PasswordHash string     `json:"password_hash,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (r roleRecord) role() models.Role {
	return models.Role{Name: r.Name, Permissions: r.Permissions}
}

func (r userRecord) user() models.User {
	return models.User{Account: r.Account, RoleName: r.RoleName, PasswordHash: r.PasswordHash}
}

// BadgerStore is a Store on an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates a BadgerDB at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Bool("in_memory", path == "").Msg("Badger directory opened")
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an open database. The store takes ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) FindAllRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.scan(ctx, opFindAllRoles, rolePrefix, func(val []byte) error {
		var rec roleRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.DeletedAt == nil {
			roles = append(roles, rec.role())
		}
		return nil
	})
	if err != nil {
		return nil, observe(backendBadger, opFindAllRoles, err)
	}
	sortRoles(roles)
	return roles, observe(backendBadger, opFindAllRoles, nil)
}

func (s *BadgerStore) FindAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.scan(ctx, opFindAllUsers, userPrefix, func(val []byte) error {
		var rec userRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.DeletedAt == nil {
			users = append(users, rec.user())
		}
		return nil
	})
	if err != nil {
		return nil, observe(backendBadger, opFindAllUsers, err)
	}
	sortUsers(users)
	return users, observe(backendBadger, opFindAllUsers, nil)
}

// scan calls decode for every value under prefix inside one read
// transaction. Errors from decode are reported as Decode, everything else
// as Unavailable.
func (s *BadgerStore) scan(ctx context.Context, op, prefix string, decode func([]byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := decode(val); err != nil {
				return authz.Decode(op, fmt.Errorf("key %s: %w", item.Key(), err))
			}
		}
		return nil
	})
	if err != nil {
		return asUnavailable(op, err)
	}
	return nil
}

func (s *BadgerStore) FindRole(_ context.Context, name string) (models.Role, error) {
	var rec roleRecord
	if err := s.get(rolePrefix+name, &rec); err != nil {
		return models.Role{}, err
	}
	if rec.DeletedAt != nil {
		return models.Role{}, ErrNotFound
	}
	return rec.role(), nil
}

func (s *BadgerStore) FindUser(_ context.Context, account string) (models.User, error) {
	var rec userRecord
	if err := s.get(userPrefix+account, &rec); err != nil {
		return models.User{}, err
	}
	if rec.DeletedAt != nil {
		return models.User{}, ErrNotFound
	}
	return rec.user(), nil
}

func (s *BadgerStore) get(key string, v interface{}) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

func (s *BadgerStore) UpsertRole(_ context.Context, role models.Role) error {
	if err := requireKey("role name", role.Name); err != nil {
		return err
	}
	rec := roleRecord{Name: role.Name, Permissions: role.Permissions, UpdatedAt: now()}
	return observe(backendBadger, opUpsertRole, s.put(rolePrefix+role.Name, rec))
}

func (s *BadgerStore) DeleteRole(_ context.Context, name string) error {
	var rec roleRecord
	if err := s.get(rolePrefix+name, &rec); err != nil {
		return err
	}
	if rec.DeletedAt != nil {
		return ErrNotFound
	}
	ts := now()
	rec.UpdatedAt, rec.DeletedAt = ts, &ts
	return observe(backendBadger, opDeleteRole, s.put(rolePrefix+name, rec))
}

func (s *BadgerStore) UpsertUser(_ context.Context, user models.User) error {
	if err := requireKey("account", user.Account); err != nil {
		return err
	}
	rec := userRecord{
		Account:      user.Account,
		RoleName:     user.RoleName,
		PasswordHash: user.PasswordHash,
		UpdatedAt:    now(),
	}
	return observe(backendBadger, opUpsertUser, s.put(userPrefix+user.Account, rec))
}

func (s *BadgerStore) DeleteUser(_ context.Context, account string) error {
	var rec userRecord
	if err := s.get(userPrefix+account, &rec); err != nil {
		return err
	}
	if rec.DeletedAt != nil {
		return ErrNotFound
	}
	ts := now()
	rec.UpdatedAt, rec.DeletedAt = ts, &ts
	return observe(backendBadger, opDeleteUser, s.put(userPrefix+account, rec))
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
