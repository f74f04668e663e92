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

// creep moves the vessel a few centimetres so every report changes the
// position without implying any speed.
func creep(i int) float64 {
	return 56 + float64(i)*1e-6
}

func TestSuddenSpeedChangeAnalysis_RaisesPastEvent(t *testing.T) {
	h := newHarness(t)
	a := NewSuddenSpeedChangeAnalysis(DefaultConfig().SuddenSpeedChange, h.deps())
	a.Attach(h.tracker)

	h.static(cargoMMSI, 70, 100, 20, 10, 10, "LOTUS")

	high := t0.Add(7 * time.Second)
	h.position(high, cargoMMSI, creep(0), 12, 12.2, 45, 45)

	// The drop is detected on the first low report, the event once the
	// high report has left the sustain window.
	for i := 1; i <= 7; i++ {
		h.position(high.Add(time.Duration(i)*8*time.Second), cargoMMSI, creep(i), 12, 0.1, 45, 45)
		require.Empty(t, h.eventsOf(models.EventClassSuddenSpeedChange), "raised too early at step %d", i)
	}
	h.position(high.Add(64*time.Second), cargoMMSI, creep(8), 12, 0.1, 45, 45)

	raised := h.eventsOf(models.EventClassSuddenSpeedChange)
	require.Len(t, raised, 1)
	e := raised[0]
	assert.False(t, e.IsOngoing())
	assert.Equal(t, high, e.StartTime)
	require.NotNil(t, e.EndTime)
	assert.Equal(t, high.Add(8*time.Second), *e.EndTime)
	assert.True(t, strings.HasPrefix(e.Description, "Sudden speed change of LOTUS (Cargo) on position"), e.Description)
	assert.True(t, strings.HasSuffix(e.Description, "From 12.2 kts to 0.1 kts in 8.0 secs."), e.Description)

	bhv := e.PrimaryBehaviour()
	require.NotNil(t, bhv)
	require.Len(t, bhv.TrackingPoints, 2)
	assert.InDelta(t, 12.2, *bhv.TrackingPoints[0].SpeedOverGround, 1e-6)
	assert.InDelta(t, 0.1, *bhv.TrackingPoints[1].SpeedOverGround, 1e-6)
	for _, p := range bhv.TrackingPoints {
		assert.Equal(t, models.EventCertaintyRaised, p.Certainty)
	}
	assert.Equal(t, int64(1), h.stats.Get(a.Name(), StatEventsRaised))
	assert.Equal(t, 1, h.notifications())

	// The vessel is no longer observed, so staying stopped raises nothing new.
	h.position(high.Add(72*time.Second), cargoMMSI, creep(9), 12, 0.1, 45, 45)
	assert.Len(t, h.eventsOf(models.EventClassSuddenSpeedChange), 1)
}

func TestSuddenSpeedChangeAnalysis_NoEvent(t *testing.T) {
	tests := []struct {
		name   string
		speeds []float64
	}{
		{name: "gradual slowdown", speeds: []float64{13.9, 11.7, 7.5, 5.0, 3.0, 1.9, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}},
		{name: "not below low mark", speeds: []float64{22.2, 9.0, 9.0, 9.0, 9.0, 9.0, 9.0, 9.0, 9.0, 9.0}},
		{name: "not available speed", speeds: []float64{102.3, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		{name: "speeds up again", speeds: []float64{12.2, 0.1, 0.1, 6.0, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			a := NewSuddenSpeedChangeAnalysis(DefaultConfig().SuddenSpeedChange, h.deps())
			a.Attach(h.tracker)

			h.static(cargoMMSI, 70, 100, 20, 10, 10, "LOTUS")
			for i, sog := range tt.speeds {
				h.position(t0.Add(time.Duration(i+1)*10*time.Second), cargoMMSI, creep(i), 12, sog, 45, 45)
			}
			assert.Empty(t, h.eventsOf(models.EventClassSuddenSpeedChange))
		})
	}
}

func TestSuddenSpeedChangeAnalysis_CalculatedSpeedMustStayLow(t *testing.T) {
	h := newHarness(t)
	a := NewSuddenSpeedChangeAnalysis(DefaultConfig().SuddenSpeedChange, h.deps())
	a.Attach(h.tracker)

	h.static(cargoMMSI, 70, 100, 20, 10, 10, "LOTUS")
	h.position(t0.Add(10*time.Second), cargoMMSI, 56, 12, 12.2, 0, 0)

	// Reported speed drops but the positions keep moving at about 10 knots.
	for i := 1; i <= 10; i++ {
		lat := metresNorth(56, float64(i)*8*5.14)
		h.position(t0.Add(10*time.Second+time.Duration(i)*8*time.Second), cargoMMSI, lat, 12, 0.1, 0, 0)
	}
	assert.Empty(t, h.eventsOf(models.EventClassSuddenSpeedChange))
}
