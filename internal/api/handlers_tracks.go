// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// TrackSummary is the JSON view of a live track. Unavailable values are
// omitted.
type TrackSummary struct {
	MMSI       int                `json:"mmsi"`
	Name       string             `json:"name,omitempty"`
	Callsign   string             `json:"callsign,omitempty"`
	IMO        *int               `json:"imo,omitempty"`
	ShipType   *int               `json:"ship_type,omitempty"`
	Length     *int               `json:"length,omitempty"`
	Beam       *int               `json:"beam,omitempty"`
	Position   *geometry.Position `json:"position,omitempty"`
	SOG        *float64           `json:"sog,omitempty"`
	COG        *float64           `json:"cog,omitempty"`
	Heading    *float64           `json:"heading,omitempty"`
	Cell       *int64             `json:"cell,omitempty"`
	LastUpdate time.Time          `json:"last_update"`
}

// ReportView is the JSON view of one tracking report.
type ReportView struct {
	Timestamp    time.Time         `json:"timestamp"`
	Position     geometry.Position `json:"position"`
	SOG          *float64          `json:"sog,omitempty"`
	COG          *float64          `json:"cog,omitempty"`
	Heading      *float64          `json:"heading,omitempty"`
	Interpolated bool              `json:"interpolated"`
}

// TrackDetail adds the report history to the summary.
type TrackDetail struct {
	TrackSummary
	Reports []ReportView `json:"reports"`
}

func intPtr(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

func floatPtr(v float64, ok bool) *float64 {
	if !ok || math.IsNaN(v) {
		return nil
	}
	return &v
}

func summarize(t *tracker.Track) TrackSummary {
	s := TrackSummary{
		MMSI:       t.MMSI(),
		Name:       t.ShipName(),
		Callsign:   t.Callsign(),
		LastUpdate: t.LastUpdate(),
	}
	s.IMO = intPtr(t.IMO())
	s.ShipType = intPtr(t.ShipType())
	s.Length = intPtr(t.VesselLength())
	s.Beam = intPtr(t.VesselBeam())
	if pos, ok := t.Position(); ok {
		s.Position = &pos
	}
	s.SOG = floatPtr(t.SpeedOverGround())
	s.COG = floatPtr(t.CourseOverGround())
	s.Heading = floatPtr(t.TrueHeading())
	if cell, ok := t.CellID(); ok {
		id := int64(cell)
		s.Cell = &id
	}
	return s
}

func reportView(r tracker.TrackingReport) ReportView {
	return ReportView{
		Timestamp:    r.Timestamp,
		Position:     r.Position,
		SOG:          floatPtr(r.SOG, r.HasSOG()),
		COG:          floatPtr(r.COG, r.HasCOG()),
		Heading:      floatPtr(r.Heading, r.HasHeading()),
		Interpolated: r.Interpolated,
	}
}

// ListTracks returns a summary of every live track, ordered by MMSI.
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks := h.deps.Tracks.Tracks()
	out := make([]TrackSummary, len(tracks))
	for i, t := range tracks {
		out[i] = summarize(t)
	}
	NewResponseWriter(w, r).List(out, len(out), 0)
}

// GetTrack returns one track with its report history.
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	mmsi, err := strconv.Atoi(chi.URLParam(r, "mmsi"))
	if err != nil || mmsi <= 0 {
		rw.BadRequest("mmsi must be a positive integer")
		return
	}
	t, ok := h.deps.Tracks.Track(mmsi)
	if !ok {
		rw.NotFound("no live track for mmsi " + strconv.Itoa(mmsi))
		return
	}

	reports := t.Reports()
	detail := TrackDetail{TrackSummary: summarize(t), Reports: make([]ReportView, len(reports))}
	for i, rep := range reports {
		detail.Reports[i] = reportView(rep)
	}
	rw.Success(detail)
}
