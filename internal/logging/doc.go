// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package logging provides the process-wide zerolog logger for Seawatch.
//
// Every component logs through the package level helpers so that level,
// format and output are configured once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("mmsi", mmsi).Msg("track created")
//	logging.Error().Err(err).Str("event_id", id).Msg("failed to save event")
//
// Context helpers carry a correlation id from the ingest or HTTP layer down
// to the analyses:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("message accepted")
//
// Two adapters route third-party logging into the same logger:
//
//   - SlogHandler implements slog.Handler for suture's sutureslog hook.
//   - WatermillAdapter implements watermill.LoggerAdapter for publishers
//     and subscribers.
//
// Always terminate a chain with Msg or Send, otherwise nothing is written.
package logging
