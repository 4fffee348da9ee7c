// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package main is the entry point for the Warden server.

Warden answers "may this account call this method on this path?" from a
directory of roles and users. Decisions come from a single authorization
actor that owns the compiled policy; the HTTP API, the change listener and
every admin route talk to it through a handle.

# Startup

	1. Load configuration (koanf: defaults, config file, environment)
	2. Initialize zerolog
	3. Open the directory (memory, badger or duckdb, behind a circuit breaker)
	4. Apply the seed file, if DIRECTORY_SEED_PATH is set
	5. Open the reload history (memory or duckdb), if HISTORY_ENABLED
	6. Build the enforcer and load the first policy; failure is fatal
	7. Initialize change notifications (gochannel, or NATS)
	8. Build the HTTP router and start the supervisor tree

# Supervisor Tree

	RootSupervisor ("warden")
	├── AuthzSupervisor ("authz-layer")
	│   └── authorization actor
	├── MessagingSupervisor ("messaging-layer")
	│   ├── embedded NATS server (NATS_EMBEDDED=true)
	│   └── change listener
	└── APISupervisor ("api-layer")
	    ├── HTTP server
	    └── reload history retention (HISTORY_ENABLED=true)

# Configuration

Common environment variables:

	JWT_SECRET            token signing secret (required)
	HTTP_PORT             listen port (default 8443)
	DIRECTORY_BACKEND     memory, badger or duckdb (default badger)
	BADGER_PATH           badger directory
	DUCKDB_PATH           duckdb file or :memory:
	DIRECTORY_SEED_PATH   YAML seed of roles and users
	NATS_ENABLED          route change events through NATS
	NATS_EMBEDDED         run a NATS server in process
	HISTORY_BACKEND       memory or duckdb reload history (default memory)
	HISTORY_DUCKDB_PATH   duckdb file for the reload history
	CORS_ORIGINS          comma-separated allowed origins
	LOG_LEVEL, LOG_FORMAT zerolog settings

A config file is read from CONFIG_PATH, ./config.yaml or
/etc/warden/config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains, the
listener unsubscribes, and the actor answers every queued request before it
closes the enforcer.

# Example

	export JWT_SECRET=$(openssl rand -base64 32)
	export DIRECTORY_BACKEND=duckdb
	export DUCKDB_PATH=/var/lib/warden/directory.duckdb
	export DIRECTORY_SEED_PATH=/etc/warden/seed.yaml
	./warden
*/
package main
