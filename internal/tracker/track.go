// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package tracker

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/models"
)

// DefaultHistoryWindow is how much position history a track keeps,
// measured back from its newest report.
const DefaultHistoryWindow = 10 * time.Minute

// ErrCannotPredict is returned by Predict when the track lacks a position,
// speed or course, or when the target time is not after the newest report.
var ErrCannotPredict = errors.New("track cannot be predicted")

// BehaviourState is the hysteresis state of one event class on one track.
type BehaviourState struct {
	RaiseScore int
	LowerScore int
	Active     bool
}

// Dimensions are the distances in metres from the position antenna to the
// hull's extremities.
type Dimensions struct {
	Bow       int
	Stern     int
	Port      int
	Starboard int
}

// Length is the length overall.
func (d Dimensions) Length() int { return d.Bow + d.Stern }

// Beam is the breadth.
func (d Dimensions) Beam() int { return d.Port + d.Starboard }

// Track is the state of one vessel.
type Track struct {
	mu sync.RWMutex

	mmsi       int
	created    time.Time
	lastUpdate time.Time
	window     time.Duration

	shipType    int
	hasShipType bool
	dims        Dimensions
	hasDims     bool
	name        string
	callsign    string
	imo         int

	cell    grid.CellID
	hasCell bool

	behaviours [models.NumEventClasses]BehaviourState
	reports    []TrackingReport
}

// NewTrack creates an empty track for mmsi.
func NewTrack(mmsi int, created time.Time) *Track {
	return &Track{mmsi: mmsi, created: created, window: DefaultHistoryWindow}
}

// MMSI returns the vessel identity.
func (t *Track) MMSI() int {
	return t.mmsi
}

// Created returns the time of the first report.
func (t *Track) Created() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.created
}

// LastUpdate returns the timestamp of the newest accepted report of any kind.
func (t *Track) LastUpdate() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastUpdate
}

// LastPositionUpdate returns the timestamp of the newest position report.
func (t *Track) LastPositionUpdate() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.reports) == 0 {
		return time.Time{}
	}
	return t.reports[len(t.reports)-1].Timestamp
}

// NewestReport returns the newest tracking report.
func (t *Track) NewestReport() (TrackingReport, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.newest()
}

func (t *Track) newest() (TrackingReport, bool) {
	if len(t.reports) == 0 {
		return TrackingReport{}, false
	}
	return t.reports[len(t.reports)-1], true
}

// Reports returns a copy of the stored history, oldest first.
func (t *Track) Reports() []TrackingReport {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TrackingReport, len(t.reports))
	copy(out, t.reports)
	return out
}

// Position returns the newest position.
func (t *Track) Position() (geometry.Position, bool) {
	r, ok := t.NewestReport()
	return r.Position, ok
}

// SpeedOverGround returns the newest speed over ground in knots.
func (t *Track) SpeedOverGround() (float64, bool) {
	r, ok := t.NewestReport()
	return r.SOG, ok && r.HasSOG()
}

// CourseOverGround returns the newest course over ground in degrees.
func (t *Track) CourseOverGround() (float64, bool) {
	r, ok := t.NewestReport()
	return r.COG, ok && r.HasCOG()
}

// TrueHeading returns the newest true heading in degrees.
func (t *Track) TrueHeading() (float64, bool) {
	r, ok := t.NewestReport()
	return r.Heading, ok && r.HasHeading()
}

// ShipType returns the reported ship type code.
func (t *Track) ShipType() (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shipType, t.hasShipType
}

// Dimensions returns the reported antenna offsets.
func (t *Track) Dimensions() (Dimensions, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dims, t.hasDims
}

// VesselLength returns the length overall in metres.
func (t *Track) VesselLength() (int, bool) {
	d, ok := t.Dimensions()
	return d.Length(), ok
}

// VesselBeam returns the beam in metres.
func (t *Track) VesselBeam() (int, bool) {
	d, ok := t.Dimensions()
	return d.Beam(), ok
}

// Hull returns the geometry hull description.
func (t *Track) Hull() (geometry.Hull, bool) {
	d, ok := t.Dimensions()
	if !ok {
		return geometry.Hull{}, false
	}
	return geometry.Hull{
		LOA:          float64(d.Length()),
		Beam:         float64(d.Beam()),
		DimStern:     float64(d.Stern),
		DimStarboard: float64(d.Starboard),
	}, true
}

// ShipName returns the reported name, or "".
func (t *Track) ShipName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name
}

// Callsign returns the reported callsign, or "".
func (t *Track) Callsign() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.callsign
}

// IMO returns the reported IMO number.
func (t *Track) IMO() (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.imo, t.imo > 0
}

// CellID returns the grid cell of the newest valid position.
func (t *Track) CellID() (grid.CellID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cell, t.hasCell
}

// Vessel returns a snapshot of the vessel's identity and static data.
func (t *Track) Vessel() models.Vessel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v := models.Vessel{
		MMSI:     t.mmsi,
		IMO:      t.imo,
		Callsign: t.callsign,
		Name:     t.name,
	}
	if t.hasShipType {
		v.Type = t.shipType
	}
	if t.hasDims {
		v.ToBow = t.dims.Bow
		v.ToStern = t.dims.Stern
		v.ToPort = t.dims.Port
		v.ToStarboard = t.dims.Starboard
	}
	return v
}

// Behaviour returns the behaviour state of class.
func (t *Track) Behaviour(class models.EventClass) BehaviourState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !class.Valid() {
		return BehaviourState{}
	}
	return t.behaviours[class]
}

// UpdateBehaviour applies fn to the behaviour state of class while holding
// the track's write lock. If fn returns a defined certainty, it is stamped
// on the newest tracking report.
func (t *Track) UpdateBehaviour(class models.EventClass, fn func(*BehaviourState) models.EventCertainty) {
	if !class.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c := fn(&t.behaviours[class])
	if c.Defined() && len(t.reports) > 0 {
		t.reports[len(t.reports)-1].Certainty[class] = c
	}
}

// ResetBehaviours clears the behaviour state of every class.
func (t *Track) ResetBehaviours() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.behaviours = [models.NumEventClasses]BehaviourState{}
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := &Track{
		mmsi:        t.mmsi,
		created:     t.created,
		lastUpdate:  t.lastUpdate,
		window:      t.window,
		shipType:    t.shipType,
		hasShipType: t.hasShipType,
		dims:        t.dims,
		hasDims:     t.hasDims,
		name:        t.name,
		callsign:    t.callsign,
		imo:         t.imo,
		cell:        t.cell,
		hasCell:     t.hasCell,
		behaviours:  t.behaviours,
		reports:     make([]TrackingReport, len(t.reports)),
	}
	copy(c.reports, t.reports)
	return c
}

// Predict dead-reckons the newest report forward to at along its course
// and speed on a rhumb line, and appends the result as an interpolated
// report. Callers normally predict on a Clone.
func (t *Track) Predict(at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.newest()
	if !ok || !r.HasSOG() || !r.HasCOG() || !at.After(r.Timestamp) {
		return ErrCannotPredict
	}
	hours := at.Sub(r.Timestamp).Hours()
	distance := r.SOG * hours * geometry.MetersPerNauticalMile

	predicted := r
	predicted.Timestamp = at
	predicted.Position = r.Position.RhumbLineDestination(r.COG, distance)
	predicted.Interpolated = true
	predicted.Certainty = [models.NumEventClasses]models.EventCertainty{}
	t.appendReport(predicted)
	return nil
}

// accept reports whether an update at ts is in sequence.
func (t *Track) accept(ts time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !ts.Before(t.lastUpdate)
}

// applyStatic stores the static fields present in r.
func (t *Track) applyStatic(ts time.Time, r Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch(ts)
	if r.ShipType != nil {
		t.shipType = *r.ShipType
		t.hasShipType = true
	}
	if r.DimBow != nil && r.DimStern != nil && r.DimPort != nil && r.DimStarboard != nil {
		t.dims = Dimensions{Bow: *r.DimBow, Stern: *r.DimStern, Port: *r.DimPort, Starboard: *r.DimStarboard}
		t.hasDims = true
	}
	if r.Name != "" {
		t.name = r.Name
	}
	if r.Callsign != "" {
		t.callsign = r.Callsign
	}
	if r.IMO != nil && *r.IMO > 0 {
		t.imo = *r.IMO
	}
}

// applyPosition appends a tracking report, moves the track to cell and
// returns the previous newest report and cell.
func (t *Track) applyPosition(tr TrackingReport, cell grid.CellID) (prev TrackingReport, hadPrev bool, prevCell grid.CellID, hadCell bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, hadPrev = t.newest()
	prevCell, hadCell = t.cell, t.hasCell
	t.touch(tr.Timestamp)
	t.appendReport(tr)
	t.cell, t.hasCell = cell, true
	return prev, hadPrev, prevCell, hadCell
}

// clearCell forgets the track's cell after a report without a valid
// position, and returns the previous one.
func (t *Track) clearCell(ts time.Time) (prevCell grid.CellID, hadCell bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch(ts)
	prevCell, hadCell = t.cell, t.hasCell
	t.hasCell = false
	return prevCell, hadCell
}

func (t *Track) touch(ts time.Time) {
	if ts.After(t.lastUpdate) {
		t.lastUpdate = ts
	}
}

// appendReport inserts r in timestamp order, replacing a report with the
// same timestamp, then prunes the history window. Must hold mu.
func (t *Track) appendReport(r TrackingReport) {
	n := len(t.reports)
	switch {
	case n == 0 || r.Timestamp.After(t.reports[n-1].Timestamp):
		t.reports = append(t.reports, r)
	default:
		i := sort.Search(n, func(i int) bool { return !t.reports[i].Timestamp.Before(r.Timestamp) })
		if i < n && t.reports[i].Timestamp.Equal(r.Timestamp) {
			t.reports[i] = r
		} else {
			t.reports = append(t.reports, TrackingReport{})
			copy(t.reports[i+1:], t.reports[i:])
			t.reports[i] = r
		}
	}
	t.prune()
}

func (t *Track) prune() {
	if len(t.reports) == 0 || t.window <= 0 {
		return
	}
	oldest := t.reports[len(t.reports)-1].Timestamp.Add(-t.window)
	i := sort.Search(len(t.reports), func(i int) bool { return !t.reports[i].Timestamp.Before(oldest) })
	if i > 0 {
		t.reports = append(t.reports[:0], t.reports[i:]...)
	}
}

// newTrackingReport builds a stored report from a decoded position report.
func newTrackingReport(ts time.Time, r Report) TrackingReport {
	return TrackingReport{
		Timestamp: ts,
		Position:  *r.Position,
		SOG:       valueOrNaN(r.SOG),
		COG:       valueOrNaN(r.COG),
		Heading:   valueOrNaN(r.Heading),
	}
}

// SpeedBetween is the rhumb line speed in knots needed to sail from a to b,
// or NaN when b is not after a.
func SpeedBetween(a, b TrackingReport) float64 {
	dt := b.Timestamp.Sub(a.Timestamp).Hours()
	if dt <= 0 {
		return math.NaN()
	}
	return a.Position.RhumbLineDistanceTo(b.Position) / geometry.MetersPerNauticalMile / dt
}
