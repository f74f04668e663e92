// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are package-level promauto vectors registered on the default
registry. Components record through the Record* helpers rather than touching
the vectors directly, so label sets stay consistent.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Ingest and Tracking:
  - seawatch_messages_received_total (kind)
  - seawatch_messages_dropped_total (reason)
  - seawatch_active_tracks
  - seawatch_cell_transitions_total
  - seawatch_tracks_stale_total

Analysis:
  - seawatch_analyses_total (analysis)
  - seawatch_analysis_skips_total (analysis, reason)
  - seawatch_analysis_duration_seconds (analysis)
  - seawatch_verdicts_total (class, verdict)
  - seawatch_behaviour_notifications_total (class, kind)

Events and Statistics:
  - seawatch_events_persisted_total (class, state)
  - seawatch_event_store_duration_seconds (operation)
  - seawatch_event_store_errors_total (operation)
  - seawatch_statistics_cache_hits_total
  - seawatch_statistics_cache_misses_total

Delivery:
  - seawatch_notifications_delivered_total (notifier, result)
  - seawatch_messages_published_total (topic, result)
  - seawatch_circuit_breaker_state (name)
  - seawatch_circuit_breaker_state_transitions_total (name, from_state, to_state)
  - seawatch_websocket_connections
  - seawatch_websocket_messages_sent_total

HTTP:
  - seawatch_api_requests_total (method, endpoint, status_code)
  - seawatch_api_request_duration_seconds (method, endpoint)
  - seawatch_api_active_requests
  - seawatch_api_rate_limit_hits_total (endpoint)

Example PromQL queries:

	# Abnormal verdict rate per class
	sum by (class) (rate(seawatch_verdicts_total{verdict="abnormal"}[5m]))

	# Statistics cache hit rate
	rate(seawatch_statistics_cache_hits_total[5m]) /
	  (rate(seawatch_statistics_cache_hits_total[5m]) + rate(seawatch_statistics_cache_misses_total[5m]))
*/
package metrics
