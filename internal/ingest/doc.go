// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package ingest feeds decoded AIS messages into the tracker.
//
// A Source produces Messages from a JSON lines file, an MQTT topic or a
// NATS subject. The Service runs one source, passes every message through
// the filter chain (location box, ship name skip list, per-vessel
// downsampling) and applies the survivors to tracker.Service.Update on a
// single goroutine, so analyses see each vessel's reports in order.
//
// Messages are JSON objects:
//
//	{"timestamp":"2026-05-04T08:00:00Z","mmsi":219000001,"kind":"position",
//	 "lat":55.7,"lon":11.1,"sog":12.3,"cog":87.5,"heading":88}
//
//	{"timestamp":"2026-05-04T08:00:03Z","mmsi":219000001,"kind":"static",
//	 "ship_type":70,"dim_bow":120,"dim_stern":30,"dim_port":12,
//	 "dim_starboard":12,"name":"NORDIC SEA","callsign":"OXAB2"}
package ingest
