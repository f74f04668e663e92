// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"fmt"
	"time"

	"github.com/tomtom215/seawatch/internal/cache"
	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// encounterKey identifies one analysed vessel pair at one instant.
type encounterKey struct {
	primary   int
	secondary int
	timestamp int64
}

// CloseEncounterAnalysis detects vessels whose hull enters another
// vessel's safety zone.
type CloseEncounterAnalysis struct {
	base
	cfg   CloseEncounterConfig
	zones *geometry.SafetyZoneService

	nearby   *cache.SpatialHashGrid[int, *tracker.Track]
	analysed *cache.LRU[encounterKey, struct{}]
}

// NewCloseEncounterAnalysis creates the analysis.
func NewCloseEncounterAnalysis(cfg CloseEncounterConfig, zones geometry.SafetyZoneConfig, deps Deps) *CloseEncounterAnalysis {
	a := &CloseEncounterAnalysis{
		cfg:      cfg,
		zones:    geometry.NewSafetyZoneService(zones),
		nearby:   cache.NewSpatialHashGrid[int, *tracker.Track](cfg.Radius),
		analysed: cache.NewLRU[encounterKey, struct{}](cfg.DedupeSize, 0),
	}
	a.init("CloseEncounterAnalysis", cfg.Enabled, deps)
	return a
}

func (a *CloseEncounterAnalysis) Attach(s *tracker.Service) {
	s.OnPositionChanged(a.onPositionChanged)
	s.OnTrackStale(a.onTrackStale)
	s.OnTime(a.onTime)
	a.manager.Subscribe(a.behaviourHandler(models.EventClassCloseEncounter, a.buildEvent))
	logging.Info().
		Str("analysis", a.name).
		Float64("sog_min", a.cfg.SOGMin).
		Float64("radius", a.cfg.Radius).
		Dur("time_window", a.cfg.TimeWindow).
		Msg("analysis attached")
}

func (a *CloseEncounterAnalysis) onPositionChanged(ev tracker.PositionChangedEvent) {
	if !a.Enabled() {
		return
	}
	track := ev.Track
	r, ok := track.NewestReport()
	if !ok {
		return
	}
	a.nearby.Insert(track.MMSI(), r.Position, r.Timestamp, track)

	start := time.Now()
	a.received()

	if !r.HasSOG() || r.SOG < a.cfg.SOGMin {
		return
	}
	hull, ok := track.Hull()
	if !ok {
		a.skip(StatUnknownDimensions)
		return
	}
	if !r.HasCOG() {
		a.skip(StatUnknownCourse)
		return
	}

	zone := a.zones.SafetyZone(r.Position, r.Position, r.COG, r.SOG, hull)
	candidates := a.nearby.QueryNearby(r.Position, a.cfg.Radius,
		r.Timestamp.Add(-a.cfg.TimeWindow), r.Timestamp.Add(a.cfg.TimeWindow))

	var secondary *tracker.Track
	compared := 0
	for _, c := range candidates {
		if c.ID == track.MMSI() {
			continue
		}
		if a.analysed.IsDuplicate(encounterKey{track.MMSI(), c.ID, r.Timestamp.UnixMilli()}) {
			continue
		}
		extent, ok := a.extentAt(c.Data, r.Position, r.Timestamp)
		if !ok {
			continue
		}
		compared++
		if zone.Intersects(extent) {
			secondary = c.Data
			break
		}
	}
	if compared == 0 {
		return
	}
	a.performed(start)

	if secondary != nil {
		logging.Debug().Str("analysis", a.name).Int("mmsi", track.MMSI()).Int("other", secondary.MMSI()).Msg("safety zone intersected")
		a.manager.AbnormalBehaviourDetected(models.EventClassCloseEncounter, track, secondary)
	} else {
		a.manager.NormalBehaviourDetected(models.EventClassCloseEncounter, track)
	}
}

// extentAt predicts other to ts and returns its hull ellipse projected
// around ref.
func (a *CloseEncounterAnalysis) extentAt(other *tracker.Track, ref geometry.Position, ts time.Time) (geometry.Ellipse, bool) {
	hull, ok := other.Hull()
	if !ok {
		return geometry.Ellipse{}, false
	}
	predicted := other.Clone()
	if r, ok := predicted.NewestReport(); ok && r.Timestamp.Before(ts) {
		// A track without course or speed stays where it was last seen.
		_ = predicted.Predict(ts)
	}
	r, ok := predicted.NewestReport()
	if !ok {
		return geometry.Ellipse{}, false
	}
	hdg := r.Heading
	if !r.HasHeading() {
		if !r.HasCOG() {
			return geometry.Ellipse{}, false
		}
		hdg = r.COG
	}
	return a.zones.VesselExtent(ref, r.Position, hdg, hull), true
}

func (a *CloseEncounterAnalysis) onTrackStale(ev tracker.TrackStaleEvent) {
	a.nearby.Remove(ev.Track.MMSI())
	a.manager.TrackStaleDetected(models.EventClassCloseEncounter, ev.Track)
	a.lowerIfExists(models.EventClassCloseEncounter, ev.Track)
}

func (a *CloseEncounterAnalysis) onTime(ev tracker.TimeEvent) {
	if n := a.nearby.CleanupBefore(ev.Timestamp.Add(-a.cfg.Retention)); n > 0 {
		logging.Debug().Str("analysis", a.name).Int("removed", n).Msg("spatial index cleaned up")
	}
}

func (a *CloseEncounterAnalysis) buildEvent(track, secondary *tracker.Track) *models.Event {
	if secondary == nil {
		return nil
	}
	e := newTrackEvent(models.EventClassCloseEncounter, track)
	if e == nil {
		return nil
	}
	addPreviousTrackingPoints(e, models.EventClassCloseEncounter, track, true)
	appendNewestPoint(e, models.EventClassCloseEncounter, secondary)
	addPreviousTrackingPoints(e, models.EventClassCloseEncounter, secondary, true)

	r, _ := track.NewestReport()
	if hull, ok := track.Hull(); ok && r.HasCOG() {
		zone := a.zones.SafetyZone(r.Position, r.Position, r.COG, r.SOG, hull)
		e.SafetyZone = &zone
		if extent, ok := a.extentAt(secondary, r.Position, r.Timestamp); ok {
			e.SecondaryExtent = &extent
		}
	}

	e.Description = fmt.Sprintf("%s and %s are in close encounter on position %s at %s",
		track.Vessel().DisplayName(), secondary.Vessel().DisplayName(),
		r.Position, r.Timestamp.Format(descriptionTimeFormat))
	return e
}
