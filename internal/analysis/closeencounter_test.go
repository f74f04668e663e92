// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

const (
	primaryMMSI = 219000001
	otherMMSI   = 219000002
)

// sailAbreast sails two vessels north at 6 knots, separation metres apart.
func sailAbreast(h *harness, separation float64, steps int) {
	const step = 6 * 1852.0 / 3600 * 10
	for i := 0; i < steps; i++ {
		ts := t0.Add(time.Duration(i+1) * 10 * time.Second)
		lat := metresNorth(56, float64(i)*step)
		h.position(ts, primaryMMSI, lat, 12, 6, 0, 0)
		h.position(ts, otherMMSI, lat, metresEast(lat, 12, separation), 6, 0, 0)
	}
}

func newCloseEncounterHarness(t *testing.T) (*harness, *CloseEncounterAnalysis) {
	h := newHarness(t)
	cfg := DefaultConfig()
	a := NewCloseEncounterAnalysis(cfg.CloseEncounter, cfg.SafetyZone, h.deps())
	a.Attach(h.tracker)
	h.static(primaryMMSI, 70, 80, 20, 10, 10, "PRIMARY")
	h.static(otherMMSI, 70, 80, 20, 10, 10, "OTHER")
	return h, a
}

func TestCloseEncounterAnalysis_RaisesForVesselsAbreast(t *testing.T) {
	h, a := newCloseEncounterHarness(t)
	sailAbreast(h, 25, 3)

	raised := h.eventsOf(models.EventClassCloseEncounter)
	require.Len(t, raised, 1)
	e := raised[0]
	assert.True(t, e.IsOngoing())
	assert.True(t, e.Involves(primaryMMSI))
	assert.True(t, e.Involves(otherMMSI))
	require.Len(t, e.Behaviours, 2)
	assert.NotNil(t, e.SafetyZone)
	assert.NotNil(t, e.SecondaryExtent)

	// Both behaviours carry their whole recent history.
	for _, b := range e.Behaviours {
		assert.GreaterOrEqual(t, len(b.TrackingPoints), 2, "vessel %d", b.Vessel.MMSI)
	}
	assert.Equal(t, int64(1), h.stats.Get(a.Name(), StatEventsRaised))
}

func TestCloseEncounterAnalysis_DistantVesselsAreNotCompared(t *testing.T) {
	h, a := newCloseEncounterHarness(t)
	sailAbreast(h, 3000, 5)

	assert.Empty(t, h.eventsOf(models.EventClassCloseEncounter))
	assert.Zero(t, h.stats.Get(a.Name(), StatAnalysesPerformed))
}

func TestCloseEncounterAnalysis_SeparatedVesselsAreNormal(t *testing.T) {
	h, a := newCloseEncounterHarness(t)
	sailAbreast(h, 500, 5)

	assert.Empty(t, h.eventsOf(models.EventClassCloseEncounter))
	assert.Equal(t, int64(9), h.stats.Get(a.Name(), StatAnalysesPerformed))
}

func TestCloseEncounterAnalysis_SlowVesselsAreNotAnalysed(t *testing.T) {
	h, a := newCloseEncounterHarness(t)
	for i := 0; i < 4; i++ {
		ts := t0.Add(time.Duration(i+1) * 10 * time.Second)
		lat := metresNorth(56, float64(i))
		h.position(ts, primaryMMSI, lat, 12, 2, 0, 0)
		h.position(ts, otherMMSI, lat, metresEast(lat, 12, 25), 2, 0, 0)
	}
	assert.Empty(t, h.eventsOf(models.EventClassCloseEncounter))
	assert.Zero(t, h.stats.Get(a.Name(), StatAnalysesPerformed))
}

func TestCloseEncounterAnalysis_LowersOnStale(t *testing.T) {
	h, _ := newCloseEncounterHarness(t)
	sailAbreast(h, 25, 3)
	require.Len(t, h.eventsOf(models.EventClassCloseEncounter), 1)

	h.tracker.SweepStale(t0.Add(time.Hour))

	raised := h.eventsOf(models.EventClassCloseEncounter)
	require.Len(t, raised, 1)
	assert.False(t, raised[0].IsOngoing())
}

func TestCloseEncounterAnalysis_CleansUpSpatialIndex(t *testing.T) {
	h, a := newCloseEncounterHarness(t)
	sailAbreast(h, 25, 1)
	require.Equal(t, 2, a.nearby.Size())

	a.onTime(tracker.TimeEvent{Timestamp: t0.Add(time.Hour)})
	assert.Zero(t, a.nearby.Size())
}
