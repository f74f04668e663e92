// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomtom215/seawatch/internal/behaviour"
	"github.com/tomtom215/seawatch/internal/events"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

// harness wires a synchronous tracking service, behaviour manager and
// in-memory event repository.
type harness struct {
	t       *testing.T
	grid    *grid.Grid
	tracker *tracker.Service
	events  *events.MemoryRepository
	manager *behaviour.Manager
	stats   *Stats

	mu       sync.Mutex
	notified []*models.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithTracker(t, tracker.DefaultConfig())
}

func newHarnessWithTracker(t *testing.T, cfg tracker.Config) *harness {
	t.Helper()
	g, err := grid.New(grid.DefaultResolution)
	require.NoError(t, err)

	svc := tracker.NewService(cfg, g)
	t.Cleanup(svc.Close)

	return &harness{
		t:       t,
		grid:    g,
		tracker: svc,
		events:  events.NewMemoryRepository(),
		manager: behaviour.NewManager(behaviour.DefaultConfig(), nil),
		stats:   NewStats(),
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Events:    h.events,
		Behaviour: h.manager,
		Stats:     h.stats,
		Notifier: NotifierFunc(func(_ context.Context, e *models.Event) {
			h.mu.Lock()
			h.notified = append(h.notified, e)
			h.mu.Unlock()
		}),
	}
}

func (h *harness) static(mmsi, shipType, bow, stern, port, starboard int, name string) {
	h.t.Helper()
	require.True(h.t, h.tracker.Update(t0, mmsi, tracker.NewStaticReport(shipType, bow, stern, port, starboard, name, "")))
}

func (h *harness) position(ts time.Time, mmsi int, lat, lon, sog, cog, hdg float64) {
	h.t.Helper()
	require.True(h.t, h.tracker.Update(ts, mmsi, tracker.NewPositionReport(lat, lon, sog, cog, hdg)))
}

func (h *harness) track(mmsi int) *tracker.Track {
	h.t.Helper()
	track, ok := h.tracker.Track(mmsi)
	require.True(h.t, ok, "track %d", mmsi)
	return track
}

func (h *harness) eventsOf(class models.EventClass) []*models.Event {
	h.t.Helper()
	found, err := h.events.Find(context.Background(), events.Filter{Class: &class})
	require.NoError(h.t, err)
	return found
}

func (h *harness) notifications() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notified)
}

// metresNorth returns the latitude lying m metres north of lat.
func metresNorth(lat, m float64) float64 {
	return lat + m/111320.0
}

// metresEast returns the longitude lying m metres east of lon at lat.
func metresEast(lat, lon, m float64) float64 {
	return lon + m/(111320.0*math.Cos(lat*math.Pi/180))
}
