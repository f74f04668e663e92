// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

var excludedFromDrift = Any(IsClassB, IsUnknownTypeOrSize, IsSpecialCraft, IsEngagedInTowing)

// DriftAnalysis detects vessels moving sideways at low speed for a
// sustained period, typically after losing propulsion.
//
// It does not use the behaviour manager: events are raised as soon as
// drift has been sustained and lowered as soon as it ends.
type DriftAnalysis struct {
	base
	cfg DriftConfig

	mu       sync.Mutex
	watching map[int]struct{}
}

// NewDriftAnalysis creates the analysis.
func NewDriftAnalysis(cfg DriftConfig, deps Deps) *DriftAnalysis {
	a := &DriftAnalysis{
		cfg:      cfg,
		watching: make(map[int]struct{}),
	}
	a.init("DriftAnalysis", cfg.Enabled, deps)
	return a
}

func (a *DriftAnalysis) Attach(s *tracker.Service) {
	s.OnPositionChanged(a.onPositionChanged)
	s.OnTrackStale(a.onTrackStale)
	logging.Info().
		Str("analysis", a.name).
		Float64("sog_min", a.cfg.SOGMin).
		Float64("sog_max", a.cfg.SOGMax).
		Float64("cog_hdg", a.cfg.COGHeadingDeviation).
		Dur("period", a.cfg.Period).
		Float64("distance", a.cfg.Distance).
		Msg("analysis attached")
}

func (a *DriftAnalysis) onPositionChanged(ev tracker.PositionChangedEvent) {
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

	r, ok := track.NewestReport()
	if !ok || !r.HasSOG() || !r.HasCOG() || !r.HasHeading() {
		return
	}
	if excludedFromDrift(track) || !IsLargeOrCommercial(track) {
		return
	}

	a.analyse(track, r)
	a.performed(start)
	a.stats.Set(a.name, StatObservationList, int64(a.watchCount()))
}

func (a *DriftAnalysis) analyse(track *tracker.Track, newest tracker.TrackingReport) {
	mmsi := track.MMSI()
	if a.isDrifting(newest) {
		if a.watch(mmsi) {
			logging.Debug().Str("analysis", a.name).Int("mmsi", mmsi).Msg("possible drift, vessel added to observation list")
		}
		if a.isSustainedDrift(track) {
			a.raiseOrMaintain(models.EventClassDrift, track, nil, func() *models.Event {
				return a.buildEvent(track)
			})
		}
		return
	}
	if a.unwatch(mmsi) {
		logging.Debug().Str("analysis", a.name).Int("mmsi", mmsi).Msg("vessel no longer drifting")
		a.lowerIfExists(models.EventClassDrift, track)
	}
}

func (a *DriftAnalysis) onTrackStale(ev tracker.TrackStaleEvent) {
	if a.unwatch(ev.Track.MMSI()) {
		a.lowerIfExists(models.EventClassDrift, ev.Track)
	}
}

// isCourseHeadingDeviationIndicatingDrift reports whether cog deviates from
// both hdg and its reverse by more than the configured angle.
func (a *DriftAnalysis) isCourseHeadingDeviationIndicatingDrift(cog, hdg float64) bool {
	return geometry.AbsoluteDirectionalDifference(cog, hdg) > a.cfg.COGHeadingDeviation &&
		geometry.AbsoluteDirectionalDifference(cog+180, hdg) > a.cfg.COGHeadingDeviation
}

func (a *DriftAnalysis) isDrifting(r tracker.TrackingReport) bool {
	if !r.HasSOG() || !r.HasCOG() || !r.HasHeading() {
		return false
	}
	return r.SOG >= a.cfg.SOGMin && r.SOG <= a.cfg.SOGMax &&
		a.isCourseHeadingDeviationIndicatingDrift(r.COG, r.Heading)
}

// isSustainedDrift reports whether the track has been observed for the
// whole period, drifted throughout it, and moved far enough while doing so.
func (a *DriftAnalysis) isSustainedDrift(track *tracker.Track) bool {
	reports := track.Reports()
	if len(reports) == 0 {
		return false
	}
	oldest, newest := reports[0], reports[len(reports)-1]
	if newest.Timestamp.Sub(oldest.Timestamp) < a.cfg.Period {
		return false
	}

	from := newest.Timestamp.Add(-a.cfg.Period)
	for _, r := range reports {
		if !r.Timestamp.Before(from) && !a.isDrifting(r) {
			return false
		}
	}

	if !a.isDrifting(newest) {
		return false
	}
	driftStart := newest
	for i := len(reports) - 1; i >= 0; i-- {
		if !a.isDrifting(reports[i]) {
			break
		}
		driftStart = reports[i]
	}
	return driftStart.Position.RhumbLineDistanceTo(newest.Position) > a.cfg.Distance
}

func (a *DriftAnalysis) buildEvent(track *tracker.Track) *models.Event {
	r, ok := track.NewestReport()
	if !ok {
		return nil
	}
	vessel := track.Vessel()

	e := models.NewEvent(models.EventClassDrift, r.Timestamp)
	e.Description = fmt.Sprintf("%s is drifting on position %s at %s",
		vessel.DisplayName(), r.Position, r.Timestamp.Format(descriptionTimeFormat))

	p := r.Point(models.EventClassDrift)
	p.Certainty = models.EventCertaintyRaised
	e.AddBehaviour(vessel, true).AddTrackingPoint(p)
	addPreviousTrackingPoints(e, models.EventClassDrift, track, false)
	return e
}

func (a *DriftAnalysis) watch(mmsi int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.watching[mmsi]; ok {
		return false
	}
	a.watching[mmsi] = struct{}{}
	return true
}

func (a *DriftAnalysis) unwatch(mmsi int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.watching[mmsi]; !ok {
		return false
	}
	delete(a.watching, mmsi)
	return true
}

func (a *DriftAnalysis) watchCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.watching)
}
