// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafetyZoneService_SafetyZone(t *testing.T) {
	pos := NewPosition(56, 12)

	tests := []struct {
		name      string
		cfg       SafetyZoneConfig
		cog       float64
		hull      Hull
		wantX     float64
		wantY     float64
		wantAlpha float64
		wantBeta  float64
		wantTheta float64
	}{
		{
			name:      "heading east",
			cfg:       DefaultSafetyZoneConfig(),
			cog:       90,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 33, DimStarboard: 6},
			wantX:     42,
			wantY:     -1.5,
			wantAlpha: 100,
			wantBeta:  22.5,
			wantTheta: 0,
		},
		{
			name:      "heading north",
			cfg:       DefaultSafetyZoneConfig(),
			cog:       0,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 33, DimStarboard: 6},
			wantX:     1.5,
			wantY:     42,
			wantAlpha: 100,
			wantBeta:  22.5,
			wantTheta: 90,
		},
		{
			name:      "heading north east",
			cfg:       DefaultSafetyZoneConfig(),
			cog:       45,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 65, DimStarboard: 5.5},
			wantX:     8.485281374238571,
			wantY:     5.65685424949238,
			wantAlpha: 100,
			wantBeta:  22.5,
			wantTheta: 45,
		},
		{
			name:      "antenna near the bow",
			cfg:       DefaultSafetyZoneConfig(),
			cog:       90,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 65, DimStarboard: 5.5},
			wantX:     10,
			wantY:     -2,
			wantAlpha: 100,
			wantBeta:  22.5,
			wantTheta: 0,
		},
		{
			name:      "length multiplier 1",
			cfg:       SafetyZoneConfig{LengthFactor: 1, BreadthFactor: 3, AfterFactor: 0.25},
			cog:       90,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 65, DimStarboard: 5.5},
			wantX:     -15,
			wantY:     -2,
			wantAlpha: 75,
			wantBeta:  22.5,
			wantTheta: 0,
		},
		{
			name:      "breadth multiplier 5",
			cfg:       SafetyZoneConfig{LengthFactor: 2, BreadthFactor: 5, AfterFactor: 0.25},
			cog:       90,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 65, DimStarboard: 5.5},
			wantX:     10,
			wantY:     -2,
			wantAlpha: 100,
			wantBeta:  37.5,
			wantTheta: 0,
		},
		{
			name:      "behind multiplier 0.75",
			cfg:       SafetyZoneConfig{LengthFactor: 2, BreadthFactor: 3, AfterFactor: 0.75},
			cog:       90,
			hull:      Hull{LOA: 100, Beam: 15, DimStern: 65, DimStarboard: 5.5},
			wantX:     -15,
			wantY:     -2,
			wantAlpha: 125,
			wantBeta:  22.5,
			wantTheta: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSafetyZoneService(tt.cfg)
			e := svc.SafetyZone(pos, pos, tt.cog, 10, tt.hull)

			assert.InDelta(t, tt.wantX, e.X, 1e-6)
			assert.InDelta(t, tt.wantY, e.Y, 1e-6)
			assert.InDelta(t, tt.wantAlpha, e.Alpha, 1e-9)
			assert.InDelta(t, tt.wantBeta, e.Beta, 1e-9)
			assert.InDelta(t, tt.wantTheta, e.Theta, 1e-9)
			assert.Equal(t, pos, e.Reference)
		})
	}
}

func TestSafetyZoneService_VesselExtent(t *testing.T) {
	pos := NewPosition(56, 12)
	svc := NewSafetyZoneService(DefaultSafetyZoneConfig())

	e := svc.VesselExtent(pos, pos, 90, Hull{LOA: 100, Beam: 20, DimStern: 30, DimStarboard: 10})

	assert.InDelta(t, 20.0, e.X, 1e-6)
	assert.InDelta(t, 0.0, e.Y, 1e-6)
	assert.InDelta(t, 50.0, e.Alpha, 1e-9)
	assert.InDelta(t, 10.0, e.Beta, 1e-9)
}

func TestSafetyZoneService_ZoneContainsOwnHull(t *testing.T) {
	pos := NewPosition(56, 12)
	svc := NewSafetyZoneService(DefaultSafetyZoneConfig())
	hull := Hull{LOA: 200, Beam: 30, DimStern: 150, DimStarboard: 15}

	for _, cog := range []float64{0, 45, 90, 180, 270, 333} {
		zone := svc.SafetyZone(pos, pos, cog, 12, hull)
		extent := svc.VesselExtent(pos, pos, cog, hull)
		assert.True(t, zone.Contains(extent.Centre()), "cog %.0f", cog)
		assert.True(t, zone.Intersects(extent), "cog %.0f", cog)
	}
}

func TestCentreOfVessel(t *testing.T) {
	pos := NewPosition(56, 12)

	centred := CentreOfVessel(pos, 123, Hull{LOA: 100, Beam: 20, DimStern: 50, DimStarboard: 10})
	assert.InDelta(t, pos.Lat, centred.Lat, 1e-9)
	assert.InDelta(t, pos.Lon, centred.Lon, 1e-9)

	// Antenna at the stern of a north-bound vessel: the centre lies 50 m ahead.
	ahead := CentreOfVessel(pos, 0, Hull{LOA: 100, Beam: 20, DimStern: 0, DimStarboard: 10})
	assert.InDelta(t, 50.0, pos.DistanceTo(ahead), 0.5)
	assert.Greater(t, ahead.Lat, pos.Lat)
}
