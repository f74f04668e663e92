// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package tracker

import (
	"math"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/models"
)

// Report is one decoded update for a vessel. Nil fields were not present
// in the message or carried the protocol's "not available" value.
type Report struct {
	// Position report fields.
	Position *geometry.Position
	SOG      *float64
	COG      *float64
	Heading  *float64

	// Static report fields.
	ShipType     *int
	DimBow       *int
	DimStern     *int
	DimPort      *int
	DimStarboard *int
	Name         string
	Callsign     string
	IMO          *int
}

// NewPositionReport builds a position report. NaN kinematics are treated
// as not available.
func NewPositionReport(lat, lon, sog, cog, heading float64) Report {
	pos := geometry.NewPosition(lat, lon)
	return Report{
		Position: &pos,
		SOG:      optional(sog),
		COG:      optional(cog),
		Heading:  optional(heading),
	}
}

// NewStaticReport builds a static report.
func NewStaticReport(shipType, bow, stern, port, starboard int, name, callsign string) Report {
	return Report{
		ShipType:     &shipType,
		DimBow:       &bow,
		DimStern:     &stern,
		DimPort:      &port,
		DimStarboard: &starboard,
		Name:         name,
		Callsign:     callsign,
	}
}

// IsPosition reports whether the report carries a position field, valid
// or not.
func (r Report) IsPosition() bool {
	return r.Position != nil
}

// IsStatic reports whether the report carries any static field.
func (r Report) IsStatic() bool {
	return r.ShipType != nil || r.DimBow != nil || r.DimStern != nil ||
		r.DimPort != nil || r.DimStarboard != nil || r.Name != "" ||
		r.Callsign != "" || r.IMO != nil
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// TrackingReport is one stored position sample. Kinematic fields are NaN
// when not available.
type TrackingReport struct {
	Timestamp    time.Time
	Position     geometry.Position
	SOG          float64
	COG          float64
	Heading      float64
	Interpolated bool

	// Certainty per event class, stamped by the behaviour manager.
	Certainty [models.NumEventClasses]models.EventCertainty
}

// HasSOG reports whether the speed over ground is available.
func (r TrackingReport) HasSOG() bool { return !math.IsNaN(r.SOG) }

// HasCOG reports whether the course over ground is available.
func (r TrackingReport) HasCOG() bool { return !math.IsNaN(r.COG) }

// HasHeading reports whether the true heading is available.
func (r TrackingReport) HasHeading() bool { return !math.IsNaN(r.Heading) }

// Point converts the report to an event tracking point carrying the
// certainty of class.
func (r TrackingReport) Point(class models.EventClass) models.TrackingPoint {
	p := models.TrackingPoint{
		Timestamp:    r.Timestamp,
		Latitude:     r.Position.Lat,
		Longitude:    r.Position.Lon,
		Interpolated: r.Interpolated,
	}
	if class.Valid() {
		p.Certainty = r.Certainty[class]
	}
	if r.HasSOG() {
		v := r.SOG
		p.SpeedOverGround = &v
	}
	if r.HasCOG() {
		v := r.COG
		p.CourseOverGround = &v
	}
	if r.HasHeading() {
		v := r.Heading
		p.TrueHeading = &v
	}
	return p
}
