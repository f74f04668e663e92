// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package services adapts Seawatch components to suture.Service.

	HTTPServerService   *http.Server ListenAndServe and graceful Shutdown
	IngestService       a message source that may end, e.g. a replayed file
	SweeperService      periodic removal of stale tracks
	CheckpointService   periodic DuckDB checkpoints of the event store

The websocket hub and the embedded NATS server implement Serve and String
themselves and are added to the tree directly.
*/
package services
