// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package middleware provides the HTTP middleware shared by the API router.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: honours or generates X-Request-ID and seeds the logging
    context with request and correlation ids.
  - PrometheusMetrics: records request counts and durations labelled by the
    chi route pattern, so path parameters do not explode cardinality.
  - Compression: gzips responses for clients that accept it. Websocket
    upgrades pass through untouched.
*/
package middleware
