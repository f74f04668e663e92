// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/geometry"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventStateOngoing EventState = "ONGOING"
	EventStatePast    EventState = "PAST"
)

// Event is an abnormal event involving one or more vessels.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Class       EventClass `json:"class"`
	State       EventState `json:"state"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`

	// Categories observed when a statistical event was raised.
	ShipType         int `json:"ship_type,omitempty"`
	ShipLength       int `json:"ship_length,omitempty"`
	CourseOverGround int `json:"course_over_ground,omitempty"`
	SpeedOverGround  int `json:"speed_over_ground,omitempty"`

	// Close encounter geometry at the time the event was raised.
	SafetyZone      *geometry.Ellipse `json:"safety_zone,omitempty"`
	SecondaryExtent *geometry.Ellipse `json:"secondary_extent,omitempty"`

	Behaviours []Behaviour `json:"behaviours"`
}

// NewEvent creates an ONGOING event of the given class.
func NewEvent(class EventClass, start time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Class:     class,
		State:     EventStateOngoing,
		StartTime: start,
		Title:     class.Title(),
	}
}

// IsOngoing reports whether the event is still open.
func (e *Event) IsOngoing() bool {
	return e.State == EventStateOngoing
}

// Close marks the event PAST. Closing a PAST event is a no-op.
func (e *Event) Close(end time.Time) {
	if e.State == EventStatePast {
		return
	}
	e.State = EventStatePast
	e.EndTime = &end
}

// PrimaryBehaviour returns the behaviour of the primary vessel, or nil.
func (e *Event) PrimaryBehaviour() *Behaviour {
	for i := range e.Behaviours {
		if e.Behaviours[i].Primary {
			return &e.Behaviours[i]
		}
	}
	return nil
}

// PrimaryVessel returns the primary vessel's MMSI, or 0 when the event has
// no primary behaviour.
func (e *Event) PrimaryVessel() int {
	if b := e.PrimaryBehaviour(); b != nil {
		return b.Vessel.MMSI
	}
	return 0
}

// BehaviourOf returns the behaviour of the given vessel, or nil.
func (e *Event) BehaviourOf(mmsi int) *Behaviour {
	for i := range e.Behaviours {
		if e.Behaviours[i].Vessel.MMSI == mmsi {
			return &e.Behaviours[i]
		}
	}
	return nil
}

// AddBehaviour appends a behaviour for vessel v and returns it. The pointer
// is valid until the next AddBehaviour. Marking a behaviour primary demotes
// any previous primary.
func (e *Event) AddBehaviour(v Vessel, primary bool) *Behaviour {
	if primary {
		for i := range e.Behaviours {
			e.Behaviours[i].Primary = false
		}
	}
	e.Behaviours = append(e.Behaviours, Behaviour{Primary: primary, Vessel: v})
	return &e.Behaviours[len(e.Behaviours)-1]
}

// Involves reports whether the vessel takes part in the event.
func (e *Event) Involves(mmsi int) bool {
	return e.BehaviourOf(mmsi) != nil
}

// Clone returns a deep copy of the event's mutable parts. Tracking point
// value pointers are shared; they are never written after creation.
func (e *Event) Clone() *Event {
	c := *e
	if e.EndTime != nil {
		end := *e.EndTime
		c.EndTime = &end
	}
	if e.SafetyZone != nil {
		zone := *e.SafetyZone
		c.SafetyZone = &zone
	}
	if e.SecondaryExtent != nil {
		extent := *e.SecondaryExtent
		c.SecondaryExtent = &extent
	}
	if e.Behaviours != nil {
		c.Behaviours = make([]Behaviour, len(e.Behaviours))
		for i, b := range e.Behaviours {
			c.Behaviours[i] = b
			c.Behaviours[i].TrackingPoints = append([]TrackingPoint(nil), b.TrackingPoints...)
		}
	}
	return &c
}

// Behaviour records one vessel's part in an event.
type Behaviour struct {
	Primary        bool            `json:"primary"`
	Vessel         Vessel          `json:"vessel"`
	TrackingPoints []TrackingPoint `json:"tracking_points"`
}

// AddTrackingPoint inserts p in timestamp order. A point with the same
// timestamp as an existing one replaces it.
func (b *Behaviour) AddTrackingPoint(p TrackingPoint) {
	i := sort.Search(len(b.TrackingPoints), func(i int) bool {
		return !b.TrackingPoints[i].Timestamp.Before(p.Timestamp)
	})
	if i < len(b.TrackingPoints) && b.TrackingPoints[i].Timestamp.Equal(p.Timestamp) {
		b.TrackingPoints[i] = p
		return
	}
	b.TrackingPoints = append(b.TrackingPoints, TrackingPoint{})
	copy(b.TrackingPoints[i+1:], b.TrackingPoints[i:])
	b.TrackingPoints[i] = p
}

// LastTrackingPoint returns the newest point.
func (b *Behaviour) LastTrackingPoint() (TrackingPoint, bool) {
	if len(b.TrackingPoints) == 0 {
		return TrackingPoint{}, false
	}
	return b.TrackingPoints[len(b.TrackingPoints)-1], true
}

// Vessel is a snapshot of a vessel's identity and static data.
type Vessel struct {
	MMSI        int    `json:"mmsi"`
	IMO         int    `json:"imo,omitempty"`
	Callsign    string `json:"callsign,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        int    `json:"type,omitempty"`
	ToBow       int    `json:"to_bow,omitempty"`
	ToStern     int    `json:"to_stern,omitempty"`
	ToPort      int    `json:"to_port,omitempty"`
	ToStarboard int    `json:"to_starboard,omitempty"`
}

// Length is the length overall in metres.
func (v Vessel) Length() int {
	return v.ToBow + v.ToStern
}

// Beam is the vessel breadth in metres.
func (v Vessel) Beam() int {
	return v.ToPort + v.ToStarboard
}

// DisplayName returns the vessel name, falling back to the MMSI.
func (v Vessel) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	return strconv.Itoa(v.MMSI)
}

// TrackingPoint is one observed or interpolated position of a vessel.
type TrackingPoint struct {
	Timestamp        time.Time      `json:"timestamp"`
	Latitude         float64        `json:"lat"`
	Longitude        float64        `json:"lon"`
	SpeedOverGround  *float64       `json:"sog,omitempty"`
	CourseOverGround *float64       `json:"cog,omitempty"`
	TrueHeading      *float64       `json:"heading,omitempty"`
	Interpolated     bool           `json:"interpolated"`
	Certainty        EventCertainty `json:"certainty"`
}

// Position returns the point's geodetic position.
func (p TrackingPoint) Position() geometry.Position {
	return geometry.NewPosition(p.Latitude, p.Longitude)
}
