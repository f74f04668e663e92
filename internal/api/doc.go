// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package api serves the seawatch HTTP API with the chi router.

Routes:

	GET  /api/v1/health/live                liveness
	GET  /api/v1/health/ready               readiness, runs the registered checks
	GET  /metrics                           Prometheus exposition
	GET  /api/v1/events                     events, filtered by since, until, class, state, vessel, limit
	GET  /api/v1/events/{id}                one event
	GET  /api/v1/tracks                     live tracks
	GET  /api/v1/tracks/{mmsi}              one track with its report history
	GET  /api/v1/statistics/app             analysis, tracker and ingest counters
	GET  /api/v1/analyses                   analysis enable flags
	POST /api/v1/analyses/{name}/enable     enable an analysis
	POST /api/v1/analyses/{name}/disable    disable an analysis
	GET  /api/v1/ws                         websocket feed of saved events

JSON responses use the APIResponse envelope with success, data, error and
meta fields. CORS and per-IP rate limiting come from go-chi/cors and
go-chi/httprate.
*/
package api
