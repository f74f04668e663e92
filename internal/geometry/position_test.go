// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_DistanceTo(t *testing.T) {
	origin := NewPosition(56, 12)

	assert.Less(t, origin.DistanceTo(NewPosition(56.014, 12.014)), MetersPerNauticalMile)
	assert.Greater(t, origin.DistanceTo(NewPosition(56.1, 12.1)), MetersPerNauticalMile)
	assert.InDelta(t, 111195.0, NewPosition(0, 0).DistanceTo(NewPosition(1, 0)), 10)
	assert.Equal(t, 0.0, origin.DistanceTo(origin))
}

func TestPosition_RhumbLine(t *testing.T) {
	origin := NewPosition(56, 12)

	tests := []struct {
		name     string
		bearing  float64
		distance float64
	}{
		{"north", 0, 1000},
		{"east", 90, 2500},
		{"south west", 225, 800},
		{"north west", 315, 12000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := origin.RhumbLineDestination(tt.bearing, tt.distance)
			assert.InDelta(t, tt.distance, origin.RhumbLineDistanceTo(dest), 1e-3)
			assert.InDelta(t, tt.bearing, origin.RhumbLineBearingTo(dest), 1e-6)
		})
	}
}

func TestPosition_IsValid(t *testing.T) {
	assert.True(t, NewPosition(56, 12).IsValid())
	assert.True(t, NewPosition(-90, 180).IsValid())
	assert.False(t, NewPosition(91, 12).IsValid())
	assert.False(t, NewPosition(56, 181).IsValid())
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox{North: 57, East: 13, South: 55, West: 11}

	assert.False(t, box.IsZero())
	assert.True(t, BoundingBox{}.IsZero())
	assert.True(t, box.Contains(NewPosition(56, 12)))
	assert.True(t, box.Contains(NewPosition(57, 13)))
	assert.False(t, box.Contains(NewPosition(58, 12)))
}

func TestAbsoluteDirectionalDifference(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{10, 350, 20},
		{350, 10, 20},
		{90, 270, 180},
		{45, 90, 45},
		{-10, 10, 20},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, AbsoluteDirectionalDifference(tt.a, tt.b), 1e-9, "%v vs %v", tt.a, tt.b)
	}
}

func TestCompassToCartesian(t *testing.T) {
	assert.Equal(t, 90.0, CompassToCartesian(0))
	assert.Equal(t, 0.0, CompassToCartesian(90))
	assert.Equal(t, 270.0, CompassToCartesian(180))
	assert.Equal(t, 180.0, CompassToCartesian(270))
}
