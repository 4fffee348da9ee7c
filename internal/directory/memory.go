// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package directory

import (
	"context"
	"sync"

	"github.com/tomtom215/warden/internal/models"
)

const backendMemory = "memory"

// MemoryStore is a map-backed Store. It loses its contents on restart and
// is meant for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	roles   map[string]models.Role
	users   map[string]models.User
	closed  bool
	failure error
	oneShot []error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		roles: make(map[string]models.Role),
		users: make(map[string]models.User),
	}
}

// SetFailure makes every list read return err until cleared with nil.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// FailNext makes the next list read return err. Calls queue up.
func (s *MemoryStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oneShot = append(s.oneShot, err)
}

// injected returns a pending injected failure. Caller holds s.mu.
func (s *MemoryStore) injected() error {
	if len(s.oneShot) > 0 {
		err := s.oneShot[0]
		s.oneShot = s.oneShot[1:]
		return err
	}
	return s.failure
}

func (s *MemoryStore) FindAllRoles(_ context.Context) ([]models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, observe(backendMemory, opFindAllRoles, asUnavailable(opFindAllRoles, ErrClosed))
	}
	if err := s.injected(); err != nil {
		return nil, observe(backendMemory, opFindAllRoles, asUnavailable(opFindAllRoles, err))
	}

	roles := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, cloneRole(r))
	}
	sortRoles(roles)
	return roles, observe(backendMemory, opFindAllRoles, nil)
}

func (s *MemoryStore) FindAllUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, observe(backendMemory, opFindAllUsers, asUnavailable(opFindAllUsers, ErrClosed))
	}
	if err := s.injected(); err != nil {
		return nil, observe(backendMemory, opFindAllUsers, asUnavailable(opFindAllUsers, err))
	}

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sortUsers(users)
	return users, observe(backendMemory, opFindAllUsers, nil)
}

func (s *MemoryStore) FindRole(_ context.Context, name string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return models.Role{}, ErrClosed
	}
	r, ok := s.roles[name]
	if !ok {
		return models.Role{}, ErrNotFound
	}
	return cloneRole(r), nil
}

func (s *MemoryStore) FindUser(_ context.Context, account string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return models.User{}, ErrClosed
	}
	u, ok := s.users[account]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) UpsertRole(_ context.Context, role models.Role) error {
	if err := requireKey("role name", role.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.roles[role.Name] = cloneRole(role)
	return observe(backendMemory, opUpsertRole, nil)
}

func (s *MemoryStore) DeleteRole(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.roles[name]; !ok {
		return ErrNotFound
	}
	delete(s.roles, name)
	return observe(backendMemory, opDeleteRole, nil)
}

func (s *MemoryStore) UpsertUser(_ context.Context, user models.User) error {
	if err := requireKey("account", user.Account); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.users[user.Account] = user
	return observe(backendMemory, opUpsertUser, nil)
}

func (s *MemoryStore) DeleteUser(_ context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.users[account]; !ok {
		return ErrNotFound
	}
	delete(s.users, account)
	return observe(backendMemory, opDeleteUser, nil)
}

// Close marks the store closed. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
