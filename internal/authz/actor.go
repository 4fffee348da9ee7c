// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/warden/internal/logging"
)

// ActorConfig holds configuration for the authorization actor.
type ActorConfig struct {
	// MailboxSize is the number of messages that may wait for the actor.
	// Senders block while the mailbox is full.
	// Default: 100
	MailboxSize int

	// ReloadTimeout bounds the directory I/O of a single Reset.
	// Default: 30s
	ReloadTimeout time.Duration
}

// DefaultActorConfig returns default configuration.
func DefaultActorConfig() ActorConfig {
	return ActorConfig{
		MailboxSize:   100,
		ReloadTimeout: 30 * time.Second,
	}
}

// message is anything the actor accepts. finish closes the reply channel, so
// a request abandoned without an answer surfaces as ErrNoReply.
type message interface {
	finish()
}

type checkPermission struct {
	account string
	method  string
	path    string
	reply   chan bool
}

func (m checkPermission) finish() { close(m.reply) }

// resetPolicies reloads the snapshot. A nil reply is the fire-and-forget form.
type resetPolicies struct {
	reply chan error
}

func (m resetPolicies) finish() {
	if m.reply != nil {
		close(m.reply)
	}
}

type statusRequest struct {
	reply chan SnapshotStatus
}

func (m statusRequest) finish() { close(m.reply) }

// Actor is the single owner of an Enforcer. Every check and reload goes
// through its mailbox and is handled one at a time in arrival order, so a
// check queued after a reset always sees the post-reset snapshot.
//
// Actor implements suture.Service.
type Actor struct {
	enforcer *Enforcer
	config   ActorConfig

	mailbox  chan message
	stopped  chan struct{}
	stopOnce sync.Once

	// exited is closed once the mailbox has been drained after stop.
	exited   chan struct{}
	exitOnce sync.Once

	mu      sync.Mutex
	running bool
}

// NewActor creates an actor owning enforcer. Call Serve to start it.
func NewActor(enforcer *Enforcer, config ActorConfig) *Actor {
	if config.MailboxSize <= 0 {
		config.MailboxSize = 100
	}
	if config.ReloadTimeout <= 0 {
		config.ReloadTimeout = 30 * time.Second
	}
	return &Actor{
		enforcer: enforcer,
		config:   config,
		mailbox:  make(chan message, config.MailboxSize),
		stopped:  make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Handle returns a client for this actor. Handles are plain values and may
// be copied freely.
func (a *Actor) Handle() Handle {
	return Handle{mailbox: a.mailbox, stopped: a.stopped, exited: a.exited}
}

// Serve processes the mailbox until ctx is cancelled or Close is called.
// Once it returns the actor is stopped for good: pending and future
// requests fail with ErrNoReply or ErrSendFailed.
func (a *Actor) Serve(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("authz: actor is already running")
	}
	select {
	case <-a.stopped:
		a.mu.Unlock()
		return suture.ErrDoNotRestart
	default:
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	logging.Info().Int("mailbox_size", cap(a.mailbox)).Msg("Authorization actor started")

	for {
		// Stop takes priority over queued messages.
		select {
		case <-a.stopped:
			a.shutdown()
			return suture.ErrDoNotRestart
		default:
		}

		select {
		case <-ctx.Done():
			a.shutdown()
			return ctx.Err()
		case <-a.stopped:
			a.shutdown()
			return suture.ErrDoNotRestart
		case msg := <-a.mailbox:
			AuthzMailboxDepth.Set(float64(len(a.mailbox)))
			a.process(ctx, msg)
		}
	}
}

// Close stops the actor. A message being processed is finished and
// answered; queued messages are answered with ErrNoReply. Safe to call more
// than once.
func (a *Actor) Close() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		close(a.stopped)
		idle := !a.running
		a.mu.Unlock()

		// Without a running loop nobody else will drain the mailbox.
		if idle {
			a.drain()
		}
	})
}

// Done is closed once the actor has been stopped.
func (a *Actor) Done() <-chan struct{} {
	return a.stopped
}

// String implements fmt.Stringer for suture logging.
func (a *Actor) String() string {
	return "authz-actor"
}

func (a *Actor) shutdown() {
	a.Close()
	a.drain()
}

// drain abandons every queued message, closes the enforcer and marks the
// actor as exited.
func (a *Actor) drain() {
	for {
		select {
		case msg := <-a.mailbox:
			msg.finish()
		default:
			AuthzMailboxDepth.Set(0)
			a.enforcer.Close()
			a.exitOnce.Do(func() {
				close(a.exited)
				logging.Info().Msg("Authorization actor stopped")
			})
			return
		}
	}
}

// process handles one message to completion. A panic is contained to the
// message: its reply channel is closed unanswered and the loop continues.
func (a *Actor) process(ctx context.Context, msg message) {
	defer func() {
		if r := recover(); r != nil {
			AuthzErrorsTotal.WithLabelValues("actor_panic").Inc()
			logging.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Authorization actor recovered from panic")
		}
	}()
	defer msg.finish()

	switch m := msg.(type) {
	case checkPermission:
		deliver(m.reply, a.enforcer.Check(m.account, m.method, m.path))

	case resetPolicies:
		reloadCtx, cancel := context.WithTimeout(ctx, a.config.ReloadTimeout)
		err := a.enforcer.LoadPolicies(reloadCtx)
		cancel()
		if err != nil {
			logging.Error().Err(err).Msg("Policy reload failed, keeping previous snapshot")
		}
		if m.reply != nil {
			deliver(m.reply, err)
		}

	case statusRequest:
		deliver(m.reply, a.enforcer.Status())
	}
}

// deliver sends a reply without blocking. Reply channels have room for one
// value, so this only drops when something else already answered.
func deliver[T any](reply chan T, v T) {
	select {
	case reply <- v:
	default:
		logging.Debug().Msg("Dropping authorization reply nobody is waiting for")
	}
}
