// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package main is the entry point of seawatch, which detects abnormal
// vessel behaviour in a stream of AIS messages.
//
// # Application Architecture
//
// Components are built in this order:
//
//  1. Configuration: koanf layers of defaults, YAML file and environment
//  2. Statistics: the trained BadgerDB histograms behind an LRU
//  3. Event store: in memory or DuckDB
//  4. Embedded NATS server and the watermill event publisher (optional)
//  5. Tracker, behaviour manager and analysis engine
//  6. Notifications: websocket, publisher, webhook and redis
//  7. Ingest: file replay, MQTT or NATS source with the filter chain
//  8. HTTP API
//
// Long-running parts run under a suture supervisor tree. SIGINT and
// SIGTERM cancel the tree; the tracker buses are drained, pending
// notifications delivered and the stores closed before exit.
//
// # Replays
//
// With ingest.source=file the messages of the file are replayed. When the
// file ends the ingest service is not restarted. With the HTTP server
// disabled the process then exits, otherwise the API keeps serving the
// final state until signalled.
//
//	INGEST_SOURCE=file INGEST_FILE_PATH=day.jsonl HTTP_ENABLED=false ./seawatch
//
// # Live Feed
//
//	INGEST_SOURCE=mqtt MQTT_BROKER=tcp://broker:1883 MQTT_TOPIC='ais/#' \
//	EVENTS_STORE=duckdb EVENTS_PATH=/data/events.duckdb ./seawatch
package main
