// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package supervisor runs Warden's long-lived goroutines under a suture v4
supervisor tree.

Layout:

	warden (root)
	├── authz-layer      authorization actor
	├── messaging-layer  embedded NATS server, change listener
	└── api-layer        HTTP server

Each layer is its own supervisor, so repeated failures in messaging back
off without touching the actor or the API. A service that returns an
error is restarted; one that returns suture.ErrDoNotRestart (the actor
after Close) is removed.

Supervisor events go to zerolog through sutureslog and the logging
package's slog adapter.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerWithComponent("supervisor"), supervisor.TreeConfig{})
	tree.AddAuthzService(actor)
	tree.AddMessagingService(listener)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
