// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/seawatch/internal/models"
)

// driftStep is the distance covered in 20 seconds at 2 knots.
const driftStep = 2 * 1852.0 / 3600 * 20

func TestDriftAnalysis_RaisesSustainedDriftAndLowersWhenItEnds(t *testing.T) {
	h := newHarness(t)
	a := NewDriftAnalysis(DefaultConfig().Drift, h.deps())
	a.Attach(h.tracker)

	h.static(cargoMMSI, 70, 100, 20, 10, 10, "DRIFTER")

	lat, lon := 56.0, 12.0
	at := func(i int) time.Time { return t0.Add(time.Duration(i) * 20 * time.Second) }

	// Sideways at 2 knots: course east, heading north. Drift is sustained
	// for 8 minutes at step 25 but covers 500 metres only at step 26.
	for i := 1; i <= 25; i++ {
		h.position(at(i), cargoMMSI, lat, metresEast(lat, lon, float64(i)*driftStep), 2, 90, 0)
		require.Empty(t, h.eventsOf(models.EventClassDrift), "raised too early at step %d", i)
	}

	h.position(at(26), cargoMMSI, lat, metresEast(lat, lon, 26*driftStep), 2, 90, 0)
	raised := h.eventsOf(models.EventClassDrift)
	require.Len(t, raised, 1)
	e := raised[0]
	assert.True(t, e.IsOngoing())
	assert.Equal(t, at(26), e.StartTime)
	assert.True(t, strings.HasPrefix(e.Description, "DRIFTER is drifting on position (56.00000, "), e.Description)
	assert.True(t, strings.HasSuffix(e.Description, "at 04/05/2026 08:08"), e.Description)
	bhv := e.PrimaryBehaviour()
	require.NotNil(t, bhv)
	assert.Equal(t, models.EventCertaintyRaised, bhv.TrackingPoints[0].Certainty)
	assert.Equal(t, int64(1), h.stats.Get(a.Name(), StatObservationList))

	// Still drifting: maintained.
	h.position(at(27), cargoMMSI, lat, metresEast(lat, lon, 27*driftStep), 2, 90, 0)
	raised = h.eventsOf(models.EventClassDrift)
	require.Len(t, raised, 1)
	assert.Len(t, raised[0].PrimaryBehaviour().TrackingPoints, 2)

	// Heading now follows the course.
	h.position(at(28), cargoMMSI, lat, metresEast(lat, lon, 28*driftStep), 2, 90, 90)
	raised = h.eventsOf(models.EventClassDrift)
	require.Len(t, raised, 1)
	assert.False(t, raised[0].IsOngoing())
	require.NotNil(t, raised[0].EndTime)
	assert.Equal(t, at(28), *raised[0].EndTime)
}

// Reports every 7 seconds never land exactly on the history window
// boundary, so the stored span stays just below 10 minutes.
func TestDriftAnalysis_IrregularCadence(t *testing.T) {
	h := newHarness(t)
	a := NewDriftAnalysis(DefaultConfig().Drift, h.deps())
	a.Attach(h.tracker)

	h.static(cargoMMSI, 70, 100, 20, 10, 10, "DRIFTER")

	const cadence = 7 * time.Second
	metresPerReport := 2 * 1852.0 / 3600 * cadence.Seconds()
	var last time.Time
	for i := 1; time.Duration(i)*cadence <= 20*time.Minute; i++ {
		last = t0.Add(time.Duration(i) * cadence)
		h.position(last, cargoMMSI, 56, metresEast(56, 12, float64(i)*metresPerReport), 2, 90, 0)
	}

	reports := h.track(cargoMMSI).Reports()
	span := reports[len(reports)-1].Timestamp.Sub(reports[0].Timestamp)
	require.Less(t, span, 10*time.Minute)
	require.GreaterOrEqual(t, span, a.cfg.Period)

	raised := h.eventsOf(models.EventClassDrift)
	require.Len(t, raised, 1)
	assert.True(t, raised[0].IsOngoing())
	assert.False(t, raised[0].StartTime.Before(t0.Add(a.cfg.Period)))
	assert.True(t, raised[0].StartTime.Before(last))
}

func TestDriftAnalysis_ShortDistanceIsNotDrift(t *testing.T) {
	h := newHarness(t)
	a := NewDriftAnalysis(DefaultConfig().Drift, h.deps())
	a.Attach(h.tracker)

	h.static(cargoMMSI, 70, 100, 20, 10, 10, "DRIFTER")

	// 1 knot for 10 minutes is about 300 metres.
	step := 1852.0 / 3600 * 20
	for i := 1; i <= 35; i++ {
		h.position(t0.Add(time.Duration(i)*20*time.Second), cargoMMSI, 56, metresEast(56, 12, float64(i)*step), 1, 90, 0)
	}
	assert.Empty(t, h.eventsOf(models.EventClassDrift))
}

func TestDriftAnalysis_Skips(t *testing.T) {
	tests := []struct {
		name     string
		shipType int
		bow      int
		wantStat string
	}{
		{name: "short vessel", shipType: 70, bow: 20, wantStat: StatShorterThan(50)},
		{name: "towing vessel", shipType: 31, bow: 100},
		{name: "pleasure craft", shipType: 37, bow: 100},
		{name: "short fishing vessel is not commercial", shipType: 30, bow: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			a := NewDriftAnalysis(DefaultConfig().Drift, h.deps())
			a.Attach(h.tracker)

			h.static(cargoMMSI, tt.shipType, tt.bow, 20, 10, 10, "SKIPPED")
			for i := 1; i <= 35; i++ {
				h.position(t0.Add(time.Duration(i)*20*time.Second), cargoMMSI, 56, metresEast(56, 12, float64(i)*driftStep), 2, 90, 0)
			}

			assert.Empty(t, h.eventsOf(models.EventClassDrift))
			assert.Zero(t, h.stats.Get(a.Name(), StatAnalysesPerformed))
			if tt.wantStat != "" {
				assert.Equal(t, int64(35), h.stats.Get(a.Name(), tt.wantStat))
			}
		})
	}
}

func TestDriftAnalysis_CourseHeadingDeviation(t *testing.T) {
	a := NewDriftAnalysis(DefaultConfig().Drift, Deps{})

	tests := []struct {
		cog, hdg float64
		want     bool
	}{
		{cog: 90, hdg: 0, want: true},
		{cog: 0, hdg: 90, want: true},
		{cog: 10, hdg: 0, want: false},
		{cog: 180, hdg: 0, want: false},
		{cog: 170, hdg: 350, want: false},
		{cog: 46, hdg: 0, want: true},
		{cog: 45, hdg: 0, want: false},
		{cog: 300, hdg: 10, want: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.isCourseHeadingDeviationIndicatingDrift(tt.cog, tt.hdg), "cog %v hdg %v", tt.cog, tt.hdg)
	}
}
