// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/events"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// TrackSource exposes the live tracks.
type TrackSource interface {
	Tracks() []*tracker.Track
	Track(mmsi int) (*tracker.Track, bool)
	Stats() tracker.Stats
}

// AnalysisControl exposes the analysis engine.
type AnalysisControl interface {
	Status() []analysis.Status
	SetEnabled(name string, enabled bool) error
	Stats() *analysis.Stats
}

// IngestStats exposes the ingest counters.
type IngestStats interface {
	Stats() ingest.Stats
}

// HealthCheck is one readiness check.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the handler's collaborators. Ingest, WebSocket and Checks are
// optional.
type Deps struct {
	Events   events.Repository
	Tracks   TrackSource
	Analyses AnalysisControl
	Ingest   IngestStats

	// WebSocket serves /api/v1/ws.
	WebSocket http.Handler

	Checks  []HealthCheck
	Version string
}

// Handler implements the API endpoints.
type Handler struct {
	cfg  Config
	deps Deps
}

// NewHandler creates a handler.
func NewHandler(cfg Config, deps Deps) *Handler {
	if cfg.MaxEventLimit <= 0 {
		cfg.MaxEventLimit = DefaultConfig().MaxEventLimit
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultConfig().ReadyTimeout
	}
	return &Handler{cfg: cfg, deps: deps}
}
