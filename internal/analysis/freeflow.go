// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// FreeFlowData describes the vessels sailing in the same direction close
// ahead of, beside or behind one large vessel at one run time.
type FreeFlowData struct {
	Timestamp time.Time           `json:"timestamp"`
	Vessel    models.Vessel       `json:"vessel"`
	Centre    geometry.Position   `json:"centre"`
	COG       float64             `json:"cog"`
	SOG       float64             `json:"sog"`
	Inside    []FreeFlowNeighbour `json:"inside"`
}

// FreeFlowNeighbour is a vessel found inside the free flow ellipse.
type FreeFlowNeighbour struct {
	Vessel models.Vessel     `json:"vessel"`
	Centre geometry.Position `json:"centre"`
	COG    float64           `json:"cog"`
	SOG    float64           `json:"sog"`
}

// FreeFlowSink receives the results of each free flow run.
type FreeFlowSink interface {
	PublishFreeFlow(ctx context.Context, data []FreeFlowData) error
}

// LogFreeFlowSink logs free flow results.
type LogFreeFlowSink struct{}

// PublishFreeFlow logs one line per analysed vessel.
func (LogFreeFlowSink) PublishFreeFlow(_ context.Context, data []FreeFlowData) error {
	for _, d := range data {
		logging.Info().
			Time("timestamp", d.Timestamp).
			Int("mmsi", d.Vessel.MMSI).
			Str("name", d.Vessel.DisplayName()).
			Str("centre", d.Centre.String()).
			Int("inside", len(d.Inside)).
			Msg("free flow")
	}
	return nil
}

// FreeFlowAnalysis periodically measures how much room other vessels
// leave around large tankers and cargo ships inside an area.
type FreeFlowAnalysis struct {
	base
	cfg  FreeFlowConfig
	sink FreeFlowSink

	tracks *tracker.Service

	mu      sync.Mutex
	nextRun time.Time
}

// NewFreeFlowAnalysis creates the analysis. A nil sink logs the results.
func NewFreeFlowAnalysis(cfg FreeFlowConfig, sink FreeFlowSink, deps Deps) *FreeFlowAnalysis {
	if sink == nil {
		sink = LogFreeFlowSink{}
	}
	a := &FreeFlowAnalysis{cfg: cfg, sink: sink}
	a.init("FreeFlowAnalysis", cfg.Enabled, deps)
	return a
}

func (a *FreeFlowAnalysis) Attach(s *tracker.Service) {
	a.tracks = s
	s.OnTime(a.onTime)
	if a.cfg.Area.IsZero() {
		logging.Warn().Str("analysis", a.name).Msg("no area configured, free flow analysis will not run")
	}
	logging.Info().Str("analysis", a.name).Dur("run_period", a.cfg.RunPeriod).Msg("analysis attached")
}

func (a *FreeFlowAnalysis) onTime(ev tracker.TimeEvent) {
	if !a.Enabled() {
		return
	}
	a.mu.Lock()
	due := !ev.Timestamp.Before(a.nextRun)
	if due {
		a.nextRun = ev.Timestamp.Add(a.cfg.RunPeriod)
	}
	a.mu.Unlock()
	if !due {
		return
	}

	start := time.Now()
	a.received()
	data := a.Run(ev.Timestamp)
	a.performed(start)
	if len(data) == 0 {
		return
	}

	ctx, cancel := a.context()
	defer cancel()
	if err := a.sink.PublishFreeFlow(ctx, data); err != nil {
		logging.Error().Err(err).Str("analysis", a.name).Msg("failed to publish free flow data")
	}
}

// Run analyses the tracks known at runTime.
func (a *FreeFlowAnalysis) Run(runTime time.Time) []FreeFlowData {
	if a.tracks == nil || a.cfg.Area.IsZero() {
		return nil
	}

	var selected []*tracker.Track
	for _, t := range a.tracks.Tracks() {
		if !IsVeryLong(t) || !(IsTanker(t) || IsCargo(t)) {
			continue
		}
		pos, ok := t.Position()
		if !ok || !a.cfg.Area.Contains(pos) {
			continue
		}
		predicted := t.Clone()
		if predicted.LastPositionUpdate().Before(runTime) {
			_ = predicted.Predict(runTime)
		}
		if !predicted.LastPositionUpdate().Equal(runTime) {
			continue
		}
		selected = append(selected, predicted)
	}

	var data []FreeFlowData
	for _, t := range selected {
		if d, ok := a.analyse(t, selected, runTime); ok {
			data = append(data, d)
		}
	}
	return data
}

func (a *FreeFlowAnalysis) analyse(t0 *tracker.Track, all []*tracker.Track, runTime time.Time) (FreeFlowData, bool) {
	r0, ok := t0.NewestReport()
	if !ok || !r0.HasCOG() {
		return FreeFlowData{}, false
	}
	hull, ok := t0.Hull()
	if !ok {
		return FreeFlowData{}, false
	}
	centre := vesselCentre(r0, hull)

	ellipse := geometry.NewEllipse(centre, 0, 0, a.cfg.XL*hull.LOA, a.cfg.XB*hull.Beam, geometry.CompassToCartesian(r0.COG))
	projection := geometry.NewCoordinateTransformer(centre.Lon, centre.Lat)

	var inside []FreeFlowNeighbour
	for _, t1 := range all {
		if t1.MMSI() == t0.MMSI() {
			continue
		}
		r1, ok := t1.NewestReport()
		if !ok || !r1.HasCOG() {
			continue
		}
		if geometry.AbsoluteDirectionalDifference(r0.COG, r1.COG) >= a.cfg.DCOG {
			continue
		}
		c1 := r1.Position
		if h1, ok := t1.Hull(); ok {
			c1 = vesselCentre(r1, h1)
		}
		if !ellipse.Contains(projection.Project(c1)) {
			continue
		}
		inside = append(inside, FreeFlowNeighbour{
			Vessel: t1.Vessel(),
			Centre: c1,
			COG:    r1.COG,
			SOG:    r1.SOG,
		})
	}
	if len(inside) == 0 {
		return FreeFlowData{}, false
	}
	return FreeFlowData{
		Timestamp: runTime,
		Vessel:    t0.Vessel(),
		Centre:    centre,
		COG:       r0.COG,
		SOG:       r0.SOG,
		Inside:    inside,
	}, true
}

// vesselCentre is the hull centre of the vessel in r. The heading falls
// back to the course when not reported.
func vesselCentre(r tracker.TrackingReport, hull geometry.Hull) geometry.Position {
	hdg := r.Heading
	if !r.HasHeading() {
		hdg = r.COG
	}
	if math.IsNaN(hdg) {
		return r.Position
	}
	return geometry.CentreOfVessel(r.Position, hdg, hull)
}
