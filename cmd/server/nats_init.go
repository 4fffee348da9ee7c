// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/notify"
	"github.com/tomtom215/warden/internal/supervisor"
)

// NotifyComponents holds the change-notification pieces for lifecycle
// management.
type NotifyComponents struct {
	server    *notify.EmbeddedServer
	transport *notify.Transport
	publisher *notify.Publisher
	listener  *notify.Listener

	instanceID string
}

// InitNotify builds the change-notification transport. With NATS disabled
// events stay inside the process on a watermill gochannel; otherwise they go
// through NATS, optionally served by an embedded server.
func InitNotify(cfg *config.Config, resetter notify.Resetter) (*NotifyComponents, error) {
	instanceID := cfg.NATS.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	c := &NotifyComponents{instanceID: instanceID}
	logger := notify.WatermillLogger()

	if !cfg.NATS.Enabled {
		c.transport = notify.NewGoChannelTransport(logger)
		logging.Info().Msg("NATS disabled, change events stay in process")
	} else {
		url := cfg.NATS.URL
		if cfg.NATS.EmbeddedServer {
			srv, err := notify.NewEmbeddedServer(cfg.NATS.Host, cfg.NATS.Port)
			if err != nil {
				return nil, fmt.Errorf("start embedded NATS server: %w", err)
			}
			c.server = srv
			url = srv.ClientURL()
		}

		transport, err := notify.NewNATSTransport(notify.NATSTransportConfig{URL: url}, logger)
		if err != nil {
			c.Close(context.Background())
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		c.transport = transport
		logging.Info().Str("url", url).Msg("Change events routed through NATS")
	}

	c.publisher = notify.NewPublisher(c.transport.Publisher, cfg.NATS.Topic, instanceID)
	c.listener = notify.NewListener(c.transport.Subscriber, resetter, notify.ListenerConfig{
		Topic:       cfg.NATS.Topic,
		Origin:      instanceID,
		ReloadRate:  cfg.NATS.ReloadRate,
		ReloadBurst: cfg.NATS.ReloadBurst,
	})

	logging.Info().
		Str("instance_id", instanceID).
		Str("topic", cfg.NATS.Topic).
		Msg("Change notifications initialized")
	return c, nil
}

// Publisher returns the change publisher.
func (c *NotifyComponents) Publisher() *notify.Publisher {
	return c.publisher
}

// InstanceID identifies this process in published events.
func (c *NotifyComponents) InstanceID() string {
	return c.instanceID
}

// AddToSupervisor registers the embedded server and the listener with the
// messaging layer.
func (c *NotifyComponents) AddToSupervisor(tree *supervisor.SupervisorTree) {
	if c.server != nil {
		tree.AddMessagingService(c.server)
	}
	tree.AddMessagingService(c.listener)
	logging.Info().Msg("Change listener added to supervisor tree (messaging layer)")
}

// Close releases the transport and stops the embedded server. It is safe
// on partially initialized components.
func (c *NotifyComponents) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.publisher != nil {
		_ = c.publisher.Close()
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing notification transport")
		}
	}
	if c.server != nil && c.server.IsRunning() {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Error stopping embedded NATS server")
		}
	}
}
