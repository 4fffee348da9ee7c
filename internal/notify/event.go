// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Kind is the type of directory record that changed.
type Kind string

const (
	KindRole Kind = "role"
	KindUser Kind = "user"
)

// Op is the change applied to the record.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// MetadataOrigin is the message metadata key holding the publisher's instance ID.
const MetadataOrigin = "origin"

// ErrInvalidEvent is returned when a payload is not a usable ChangeEvent.
var ErrInvalidEvent = errors.New("invalid change event")

// ChangeEvent announces that a directory record changed.
type ChangeEvent struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Name       string    `json:"name"`
	Op         Op        `json:"op"`
	Origin     string    `json:"origin"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks the fields a listener relies on.
func (e *ChangeEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}
	switch e.Kind {
	case KindRole, KindUser:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	switch e.Op {
	case OpUpsert, OpDelete:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidEvent, e.Op)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	return nil
}

// Marshal encodes e as JSON.
func (e *ChangeEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalChangeEvent decodes and validates a JSON payload.
func UnmarshalChangeEvent(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
