// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// Publisher publishes ChangeEvents on one topic.
type Publisher struct {
	publisher message.Publisher
	topic     string
	origin    string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher publishes on topic, stamping every event with origin.
// The Publisher does not own pub; closing it leaves pub open.
func NewPublisher(pub message.Publisher, topic, origin string) *Publisher {
	return &Publisher{publisher: pub, topic: topic, origin: origin}
}

// Publish announces a change. Publishing is best effort: callers log the
// error and carry on, since their own snapshot is already up to date.
func (p *Publisher) Publish(ctx context.Context, kind Kind, name string, op Op) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	event := &ChangeEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       name,
		Op:         op,
		Origin:     p.origin,
		OccurredAt: time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		return err
	}
	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set(MetadataOrigin, p.origin)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	metrics.RecordNotifyPublish()
	logging.Ctx(ctx).Debug().
		Str("event_id", event.ID).
		Str("kind", string(kind)).
		Str("name", name).
		Str("op", string(op)).
		Msg("Directory change published")
	return nil
}

// Close stops further publishing.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
