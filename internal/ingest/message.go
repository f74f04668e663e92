// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/tracker"
	"github.com/tomtom215/seawatch/internal/validation"
)

// Kind is the message type.
type Kind string

// Message kinds.
const (
	KindPosition Kind = "position"
	KindStatic   Kind = "static"
)

// AIS "not available" values.
const (
	SOGNotAvailable     = 102.3
	COGNotAvailable     = 360.0
	HeadingNotAvailable = 511.0
)

var (
	// ErrUnknownKind is returned for messages that are neither position nor
	// static reports.
	ErrUnknownKind = errors.New("unknown message kind")

	// ErrInvalidMessage is returned for messages that fail validation.
	ErrInvalidMessage = errors.New("invalid message")
)

// Message is one decoded AIS message. Latitude 91 and longitude 181 mark
// an unavailable position and are passed on to the tracker as such.
type Message struct {
	Timestamp time.Time `json:"timestamp" validate:"required"`
	MMSI      int       `json:"mmsi" validate:"mmsi"`
	Kind      Kind      `json:"kind" validate:"required,oneof=position static"`

	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=91"`
	Lon     *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=181"`
	SOG     *float64 `json:"sog,omitempty" validate:"omitempty,gte=0,lte=102.3"`
	COG     *float64 `json:"cog,omitempty" validate:"omitempty,course|eq=360"`
	Heading *float64 `json:"heading,omitempty" validate:"omitempty,heading|eq=511"`

	ShipType     *int   `json:"ship_type,omitempty" validate:"omitempty,gte=0,lte=255"`
	DimBow       *int   `json:"dim_bow,omitempty" validate:"omitempty,gte=0,lte=511"`
	DimStern     *int   `json:"dim_stern,omitempty" validate:"omitempty,gte=0,lte=511"`
	DimPort      *int   `json:"dim_port,omitempty" validate:"omitempty,gte=0,lte=63"`
	DimStarboard *int   `json:"dim_starboard,omitempty" validate:"omitempty,gte=0,lte=63"`
	Name         string `json:"name,omitempty" validate:"max=20"`
	Callsign     string `json:"callsign,omitempty" validate:"max=7"`
	IMO          *int   `json:"imo,omitempty" validate:"omitempty,gte=0"`
}

// Decode parses and validates one JSON message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if m.Kind != KindPosition && m.Kind != KindStatic {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
	m.Name = cleanText(m.Name)
	m.Callsign = cleanText(m.Callsign)
	if verr := validation.ValidateStruct(&m); verr != nil {
		return Message{}, fmt.Errorf("%w: mmsi %d: %s", ErrInvalidMessage, m.MMSI, verr.Error())
	}
	if m.Kind == KindPosition && (m.Lat == nil || m.Lon == nil) {
		return Message{}, fmt.Errorf("%w: mmsi %d: position report without lat/lon", ErrInvalidMessage, m.MMSI)
	}
	return m, nil
}

// Encode is the inverse of Decode.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Position returns the reported position, if any.
func (m Message) Position() (geometry.Position, bool) {
	if m.Lat == nil || m.Lon == nil {
		return geometry.Position{}, false
	}
	return geometry.NewPosition(*m.Lat, *m.Lon), true
}

// Report converts m to a tracker report.
func (m Message) Report() tracker.Report {
	if m.Kind == KindPosition {
		pos, _ := m.Position()
		return tracker.NewPositionReport(pos.Lat, pos.Lon,
			available(m.SOG, SOGNotAvailable),
			available(m.COG, COGNotAvailable),
			available(m.Heading, HeadingNotAvailable))
	}
	return tracker.Report{
		ShipType:     m.ShipType,
		DimBow:       m.DimBow,
		DimStern:     m.DimStern,
		DimPort:      m.DimPort,
		DimStarboard: m.DimStarboard,
		Name:         m.Name,
		Callsign:     m.Callsign,
		IMO:          m.IMO,
	}
}

// available returns NaN for a missing value or one at or above na.
func available(v *float64, na float64) float64 {
	if v == nil || *v >= na {
		return math.NaN()
	}
	return *v
}

// cleanText strips the '@' padding of AIS six-bit text.
func cleanText(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "@ "))
}
