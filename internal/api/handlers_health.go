// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthLive reports that the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{Status: "alive", Version: h.deps.Version})
}

// HealthReady runs every check under a shared timeout. Any failure makes
// the response 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ReadyTimeout)
	defer cancel()

	status := HealthStatus{Status: "ready", Version: h.deps.Version, Checks: make(map[string]string, len(h.deps.Checks))}
	ready := true
	for _, check := range h.deps.Checks {
		start := time.Now()
		if err := check.Check(ctx); err != nil {
			status.Checks[check.Name] = err.Error()
			ready = false
			continue
		}
		status.Checks[check.Name] = "ok (" + time.Since(start).Round(time.Millisecond).String() + ")"
	}

	rw := NewResponseWriter(w, r)
	if !ready {
		status.Status = "not_ready"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "not ready", status)
		return
	}
	rw.Success(status)
}
