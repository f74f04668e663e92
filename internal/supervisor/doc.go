// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package supervisor runs the long-lived Seawatch services under a suture v4
supervisor tree.

The tree has three layers so that a failing component is restarted without
taking the others down:

	RootSupervisor ("seawatch")
	├── DataSupervisor ("data-layer")
	│   ├── nats-server (if nats.enabled)
	│   └── CheckpointService (duckdb event store)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── IngestService
	│   ├── SweeperService
	│   └── websocket-hub
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

The wrappers in the services subpackage adapt components whose lifecycle
is not already Serve(ctx) error.
*/
package supervisor
