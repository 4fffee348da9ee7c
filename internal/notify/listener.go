// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// Resetter schedules a policy reload without waiting for it.
// authz.Handle satisfies it.
type Resetter interface {
	ResetAsync(ctx context.Context) error
}

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Topic  string
	Origin string

	// ReloadRate and ReloadBurst bound how often change events trigger a
	// reset. Events beyond the budget wait for a token.
	ReloadRate  float64
	ReloadBurst int
}

// Listener turns change events from other instances into actor resets.
// It implements suture.Service.
type Listener struct {
	subscriber message.Subscriber
	resetter   Resetter
	config     ListenerConfig
	limiter    *rate.Limiter
}

// NewListener returns a Listener reading from sub.
func NewListener(sub message.Subscriber, resetter Resetter, cfg ListenerConfig) *Listener {
	if cfg.ReloadRate <= 0 {
		cfg.ReloadRate = 5
	}
	if cfg.ReloadBurst < 1 {
		cfg.ReloadBurst = 1
	}
	return &Listener{
		subscriber: sub,
		resetter:   resetter,
		config:     cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.ReloadRate), cfg.ReloadBurst),
	}
}

// Serve subscribes and handles events until ctx is cancelled. If the
// subscription ends early Serve returns an error so the supervisor
// restarts it.
func (l *Listener) Serve(ctx context.Context) error {
	messages, err := l.subscriber.Subscribe(ctx, l.config.Topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.config.Topic, err)
	}

	logging.Info().Str("topic", l.config.Topic).Str("origin", l.config.Origin).Msg("Change listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("change event subscription closed")
			}
			l.handle(ctx, msg)
		}
	}
}

// handle processes one message and acks or nacks it.
func (l *Listener) handle(ctx context.Context, msg *message.Message) {
	event, err := UnmarshalChangeEvent(msg.Payload)
	if err != nil {
		// Redelivery cannot fix a malformed payload.
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed change event")
		metrics.RecordNotifyConsume("invalid")
		msg.Ack()
		return
	}

	if event.Origin == l.config.Origin || msg.Metadata.Get(MetadataOrigin) == l.config.Origin {
		metrics.RecordNotifyConsume("skipped_own")
		msg.Ack()
		return
	}

	if err := l.limiter.Wait(ctx); err != nil {
		msg.Nack()
		return
	}

	if err := l.resetter.ResetAsync(ctx); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to schedule policy reset from change event")
		metrics.RecordNotifyConsume("failed")
		msg.Nack()
		return
	}

	metrics.RecordNotifyConsume("reset")
	logging.Debug().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("name", event.Name).
		Str("op", string(event.Op)).
		Str("origin", event.Origin).
		Msg("Policy reset scheduled from change event")
	msg.Ack()
}

func (l *Listener) String() string {
	return "notify-listener"
}
