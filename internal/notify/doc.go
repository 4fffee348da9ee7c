// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package notify propagates directory changes between Warden instances.

When a role or user is written through the API, the writing instance
reloads its own policy snapshot and publishes a ChangeEvent. Every other
instance runs a Listener that receives the event and asks its
authorization actor for an asynchronous reset, so all snapshots converge on
the directory's current contents.

Events are ephemeral hints: they carry no policy data, and a lost event
only delays convergence until the next write or manual reload.

Transports:

  - NewGoChannelTransport: in-process watermill gochannel, used when NATS
    is disabled and in tests
  - NewNATSTransport: core NATS (no JetStream) through watermill-nats
  - EmbeddedServer: an in-process NATS server for single-node setups

Listener is a suture service. It skips events published by its own
instance and throttles resets with a token bucket so a burst of writes
causes at most a few reloads.
*/
package notify
