// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// MaxValidSpeed is the highest speed over ground in knots AIS can report.
// Higher values mean "not available".
const MaxValidSpeed = 102.2

var excludedFromSuddenSpeedChange = Any(IsClassB, IsUnknownTypeOrSize, IsFishingVessel, IsSpecialCraft, IsEngagedInTowing)

// SuddenSpeedChangeAnalysis detects vessels that stop abruptly from
// cruising speed and stay stopped. Each detection is stored as a PAST
// event covering the drop.
type SuddenSpeedChangeAnalysis struct {
	base
	cfg SuddenSpeedChangeConfig

	mu         sync.Mutex
	decreasing map[int]struct{}
}

// NewSuddenSpeedChangeAnalysis creates the analysis.
func NewSuddenSpeedChangeAnalysis(cfg SuddenSpeedChangeConfig, deps Deps) *SuddenSpeedChangeAnalysis {
	a := &SuddenSpeedChangeAnalysis{
		cfg:        cfg,
		decreasing: make(map[int]struct{}),
	}
	a.init("SuddenSpeedChangeAnalysis", cfg.Enabled, deps)
	return a
}

func (a *SuddenSpeedChangeAnalysis) Attach(s *tracker.Service) {
	s.OnPositionChanged(a.onPositionChanged)
	s.OnTrackStale(a.onTrackStale)
	logging.Info().
		Str("analysis", a.name).
		Float64("sog_high", a.cfg.SOGHigh).
		Float64("sog_low", a.cfg.SOGLow).
		Dur("decay", a.cfg.Decay).
		Dur("sustain", a.cfg.Sustain).
		Msg("analysis attached")
}

func (a *SuddenSpeedChangeAnalysis) onPositionChanged(ev tracker.PositionChangedEvent) {
	if !a.Enabled() {
		return
	}
	start := time.Now()
	track := ev.Track
	a.received()

	if a.cfg.LOAMin > 0 {
		if loa, ok := track.VesselLength(); ok && loa < a.cfg.LOAMin {
			a.skip(StatShorterThan(a.cfg.LOAMin))
			return
		}
	}
	sog, ok := track.SpeedOverGround()
	if !ok {
		return
	}
	if excludedFromSuddenSpeedChange(track) || !IsLargeOrCommercial(track) {
		return
	}

	a.analyse(track, sog)
	a.performed(start)
	a.stats.Set(a.name, StatObservationList, int64(a.observed()))
}

func (a *SuddenSpeedChangeAnalysis) analyse(track *tracker.Track, sog float64) {
	mmsi := track.MMSI()
	reports := track.Reports()

	if sog > a.cfg.SOGLow {
		a.forget(mmsi)
		return
	}

	a.mu.Lock()
	_, observed := a.decreasing[mmsi]
	a.mu.Unlock()

	if !observed {
		if a.isSuddenSpeedDecrease(reports, track.LastPositionUpdate()) {
			a.mu.Lock()
			a.decreasing[mmsi] = struct{}{}
			a.mu.Unlock()
			logging.Debug().Str("analysis", a.name).Int("mmsi", mmsi).Msg("sudden speed decrease observed")
		}
		return
	}

	window := reportsSince(reports, track.LastPositionUpdate().Add(-a.cfg.Sustain))
	if a.isSustainedReportedSpeedDecrease(window) && a.isSustainedCalculatedSpeedDecrease(window) {
		a.forget(mmsi)
		if e := a.buildEvent(track, reports); e != nil {
			a.emit(e)
		}
	}
}

func (a *SuddenSpeedChangeAnalysis) onTrackStale(ev tracker.TrackStaleEvent) {
	a.forget(ev.Track.MMSI())
}

// isSuddenSpeedDecrease reports whether the newest position at t2 was
// preceded by a speed at or above the high mark no longer than the decay
// window ago.
func (a *SuddenSpeedChangeAnalysis) isSuddenSpeedDecrease(reports []tracker.TrackingReport, t2 time.Time) bool {
	t1, ok := a.lastAboveHighMark(reports)
	return ok && t2.Sub(t1) <= a.cfg.Decay
}

func (a *SuddenSpeedChangeAnalysis) isSustainedReportedSpeedDecrease(window []tracker.TrackingReport) bool {
	sogs := make([]float64, 0, len(window))
	for _, r := range window {
		if r.HasSOG() {
			sogs = append(sogs, r.SOG)
		}
	}
	if len(sogs) == 0 {
		return false
	}
	return floats.Max(sogs) <= a.cfg.SOGLow
}

// isSustainedCalculatedSpeedDecrease checks the speeds implied by the
// positions, which catches a frozen SOG field on a moving vessel.
func (a *SuddenSpeedChangeAnalysis) isSustainedCalculatedSpeedDecrease(window []tracker.TrackingReport) bool {
	for i := 0; i+1 < len(window); i++ {
		if v := tracker.SpeedBetween(window[i], window[i+1]); v > a.cfg.SOGLow {
			return false
		}
	}
	return true
}

func (a *SuddenSpeedChangeAnalysis) lastAboveHighMark(reports []tracker.TrackingReport) (time.Time, bool) {
	var t time.Time
	found := false
	for _, r := range reports {
		if r.HasSOG() && r.SOG >= a.cfg.SOGHigh && r.SOG <= MaxValidSpeed && r.Timestamp.After(t) {
			t, found = r.Timestamp, true
		}
	}
	return t, found
}

func (a *SuddenSpeedChangeAnalysis) buildEvent(track *tracker.Track, reports []tracker.TrackingReport) *models.Event {
	t1, ok := a.lastAboveHighMark(reports)
	if !ok {
		return nil
	}
	var before, after tracker.TrackingReport
	foundBefore, foundAfter := false, false
	for _, r := range reports {
		if r.Timestamp.Equal(t1) {
			before, foundBefore = r, true
		}
		if !foundAfter && !r.Timestamp.Before(t1) && r.HasSOG() && r.SOG <= a.cfg.SOGLow {
			after, foundAfter = r, true
		}
	}
	if !foundBefore || !foundAfter {
		return nil
	}

	vessel := track.Vessel()
	typeName := "unknown type"
	if shipType, ok := track.ShipType(); ok {
		typeName = categorizer.ShipTypeName(categorizer.ShipType(shipType))
		typeName = strings.ToUpper(typeName[:1]) + typeName[1:]
	}

	e := models.NewEvent(models.EventClassSuddenSpeedChange, before.Timestamp)
	e.Close(after.Timestamp)
	e.Description = fmt.Sprintf("Sudden speed change of %s (%s) on position %s at %s: From %.1f kts to %.1f kts in %.1f secs.",
		vessel.DisplayName(), typeName, before.Position,
		before.Timestamp.Format(descriptionTimeFormat),
		before.SOG, after.SOG, after.Timestamp.Sub(before.Timestamp).Seconds())

	bhv := e.AddBehaviour(vessel, true)
	for _, r := range []tracker.TrackingReport{before, after} {
		p := r.Point(models.EventClassSuddenSpeedChange)
		p.Certainty = models.EventCertaintyRaised
		bhv.AddTrackingPoint(p)
	}
	return e
}

func (a *SuddenSpeedChangeAnalysis) emit(e *models.Event) {
	ctx, cancel := a.context()
	defer cancel()

	a.stats.Inc(a.name, StatEventsRaised)
	logging.Info().
		Str("analysis", a.name).
		Str("event_id", e.ID.String()).
		Int("mmsi", e.PrimaryVessel()).
		Str("description", e.Description).
		Msg("abnormal event raised")
	a.save(ctx, e)
}

func (a *SuddenSpeedChangeAnalysis) forget(mmsi int) {
	a.mu.Lock()
	delete(a.decreasing, mmsi)
	a.mu.Unlock()
}

func (a *SuddenSpeedChangeAnalysis) observed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.decreasing)
}

// reportsSince returns the reports at or after from.
func reportsSince(reports []tracker.TrackingReport, from time.Time) []tracker.TrackingReport {
	for i, r := range reports {
		if !r.Timestamp.Before(from) {
			return reports[i:]
		}
	}
	return nil
}
