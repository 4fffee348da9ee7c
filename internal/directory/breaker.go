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

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
	"github.com/tomtom215/warden/internal/models"
)

// BreakerSettings configures a BreakerStore.
type BreakerSettings struct {
	Name string

	// MaxFailures is the number of consecutive failed reads that opens the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before a trial read.
	Timeout time.Duration

	// Interval resets the failure counts while closed. 0 never resets.
	Interval time.Duration
}

// BreakerStore guards the list reads of a Store with a circuit breaker.
// Writes and single-record reads pass straight through.
//
// Only Unavailable errors count as failures. A Decode error means the
// backend answered and is reported without tripping the circuit.
type BreakerStore struct {
	Store
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerStore wraps inner.
func NewBreakerStore(inner Store, settings BreakerSettings) *BreakerStore {
	if settings.Name == "" {
		settings.Name = "directory"
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	maxFailures := settings.MaxFailures

	metrics.SetCircuitBreakerState(settings.Name, 0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("failures", counts.ConsecutiveFailures).Str("breaker", settings.Name).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, authz.ErrDirectoryUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
		},
	})

	return &BreakerStore{Store: inner, cb: cb, name: settings.Name}
}

// State returns the current circuit state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) FindAllRoles(ctx context.Context) ([]models.Role, error) {
	return castResult[[]models.Role](b.execute(opFindAllRoles, func() (interface{}, error) {
		return b.Store.FindAllRoles(ctx)
	}))
}

func (b *BreakerStore) FindAllUsers(ctx context.Context) ([]models.User, error) {
	return castResult[[]models.User](b.execute(opFindAllUsers, func() (interface{}, error) {
		return b.Store.FindAllUsers(ctx)
	}))
}

// execute runs fn through the breaker. A rejected call becomes Unavailable.
func (b *BreakerStore) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Warn().Err(err).Str("breaker", b.name).Str("op", op).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, authz.Unavailable(op, err)
	}
	return result, err
}

func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
