// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// AppStatistics is the body of /api/v1/statistics/app.
type AppStatistics struct {
	Analyses map[string]map[string]int64 `json:"analyses"`
	Tracker  tracker.Stats               `json:"tracker"`
	Ingest   *ingest.Stats               `json:"ingest,omitempty"`
}

// AppStatistics returns the named analysis counters with tracker and
// ingest counters.
func (h *Handler) AppStatistics(w http.ResponseWriter, r *http.Request) {
	out := AppStatistics{
		Analyses: h.deps.Analyses.Stats().Snapshot(),
		Tracker:  h.deps.Tracks.Stats(),
	}
	if h.deps.Ingest != nil {
		stats := h.deps.Ingest.Stats()
		out.Ingest = &stats
	}
	NewResponseWriter(w, r).Success(out)
}

// ListAnalyses returns each analysis with its enable flag.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	status := h.deps.Analyses.Status()
	NewResponseWriter(w, r).List(status, len(status), 0)
}

// EnableAnalysis turns an analysis on.
func (h *Handler) EnableAnalysis(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// DisableAnalysis turns an analysis off.
func (h *Handler) DisableAnalysis(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "name")

	err := h.deps.Analyses.SetEnabled(name, enabled)
	switch {
	case errors.Is(err, analysis.ErrUnknownAnalysis):
		rw.NotFound(err.Error())
	case err != nil:
		rw.InternalError("failed to change analysis", err)
	default:
		rw.Success(analysis.Status{Name: name, Enabled: enabled})
	}
}
