// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import (
	"fmt"
	"strings"
)

// EventClass identifies a kind of abnormal behaviour.
type EventClass int

const (
	EventClassCourseOverGround EventClass = iota
	EventClassSpeedOverGround
	EventClassShipSizeOrType
	EventClassDrift
	EventClassSuddenSpeedChange
	EventClassCloseEncounter
)

// NumEventClasses is the number of defined event classes. Per-class state
// arrays are sized with it.
const NumEventClasses = int(EventClassCloseEncounter) + 1

var eventClassNames = [NumEventClasses]string{
	"COURSE_OVER_GROUND",
	"SPEED_OVER_GROUND",
	"SHIP_SIZE_OR_TYPE",
	"DRIFT",
	"SUDDEN_SPEED_CHANGE",
	"CLOSE_ENCOUNTER",
}

var eventClassTitles = [NumEventClasses]string{
	"Abnormal course over ground",
	"Abnormal speed over ground",
	"Abnormal ship size or type",
	"Drift",
	"Sudden speed change",
	"Close encounter",
}

// AllEventClasses returns every defined class in declaration order.
func AllEventClasses() []EventClass {
	classes := make([]EventClass, NumEventClasses)
	for i := range classes {
		classes[i] = EventClass(i)
	}
	return classes
}

// Valid reports whether c is a defined class.
func (c EventClass) Valid() bool {
	return c >= 0 && int(c) < NumEventClasses
}

func (c EventClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("EventClass(%d)", int(c))
	}
	return eventClassNames[c]
}

// Title is the human readable event title.
func (c EventClass) Title() string {
	if !c.Valid() {
		return c.String()
	}
	return eventClassTitles[c]
}

// ParseEventClass parses the canonical upper-case name, case-insensitively.
func ParseEventClass(s string) (EventClass, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range eventClassNames {
		if name == s {
			return EventClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c EventClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid event class %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *EventClass) UnmarshalText(text []byte) error {
	parsed, err := ParseEventClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// EventCertainty grades how sure the behaviour manager was that an event
// was ongoing when a tracking point was recorded.
type EventCertainty uint8

const (
	EventCertaintyUndefined EventCertainty = iota
	EventCertaintyLowered
	EventCertaintyUncertain
	EventCertaintyRaised
)

func (c EventCertainty) String() string {
	switch c {
	case EventCertaintyLowered:
		return "LOWERED"
	case EventCertaintyUncertain:
		return "UNCERTAIN"
	case EventCertaintyRaised:
		return "RAISED"
	default:
		return "UNDEFINED"
	}
}

// Defined reports whether the certainty carries information.
func (c EventCertainty) Defined() bool {
	return c != EventCertaintyUndefined
}

// MarshalText implements encoding.TextMarshaler.
func (c EventCertainty) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// as UNDEFINED.
func (c *EventCertainty) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "LOWERED":
		*c = EventCertaintyLowered
	case "UNCERTAIN":
		*c = EventCertaintyUncertain
	case "RAISED":
		*c = EventCertaintyRaised
	default:
		*c = EventCertaintyUndefined
	}
	return nil
}
