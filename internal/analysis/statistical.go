// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/statistics"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// excludedFromStatistics are vessels whose behaviour the trained speed and
// type statistics do not describe well.
var excludedFromStatistics = Any(IsClassB, IsUnknownTypeOrSize, IsFishingVessel, IsSmall, IsSpecialCraft, IsEngagedInTowing)

// statistical is the common part of the histogram based analyses.
type statistical struct {
	base
	cfg      StatisticalConfig
	class    models.EventClass
	feature  string
	repo     statistics.Repository
	speeds   categorizer.SpeedTable
	excluded Predicate

	// value returns the 0-based value index of the track, or the name of
	// the missing attribute.
	value func(t *tracker.Track) (int, string)
}

func (a *statistical) Attach(s *tracker.Service) {
	s.OnCellChanged(a.onCellChanged)
	s.OnTrackStale(a.onTrackStale)
	a.manager.Subscribe(a.behaviourHandler(a.class, func(track, _ *tracker.Track) *models.Event {
		return a.buildEvent(track)
	}))
	logging.Info().Str("analysis", a.name).Str("feature", a.feature).Msg("analysis attached")
}

func (a *statistical) onCellChanged(ev tracker.CellChangedEvent) {
	if !a.Enabled() {
		return
	}
	start := time.Now()
	track := ev.Track
	a.received()

	if a.cfg.SOGMin > 0 {
		if sog, ok := track.SpeedOverGround(); !ok || sog < a.cfg.SOGMin {
			return
		}
	}
	if a.excluded != nil && a.excluded(track) {
		return
	}
	if a.cfg.LOAMin > 0 {
		if loa, ok := track.VesselLength(); ok && loa < a.cfg.LOAMin {
			a.skip(StatShorterThan(a.cfg.LOAMin))
			return
		}
	}

	cell, ok := track.CellID()
	if !ok {
		a.skip(StatUnknownCell)
		return
	}
	shipType, ok := track.ShipType()
	if !ok {
		a.skip(StatUnknownShipType)
		return
	}
	length, ok := track.VesselLength()
	if !ok {
		a.skip(StatUnknownShipLength)
		return
	}
	valueKey, missing := a.value(track)
	if missing != "" {
		a.skip(missing)
		return
	}

	typeKey := categorizer.ShipType(shipType) - 1
	lengthKey := categorizer.ShipLength(length) - 1

	ctx, cancel := a.context()
	abnormal, err := a.isAbnormal(ctx, cell, typeKey, lengthKey, valueKey)
	cancel()
	if err != nil {
		logging.Warn().Err(err).Str("analysis", a.name).Int64("cell", int64(cell)).Msg("statistics lookup failed")
		a.skip(StatStatisticsUnavailable)
		return
	}
	a.performed(start)

	if abnormal {
		a.manager.AbnormalBehaviourDetected(a.class, track, nil)
	} else {
		a.manager.NormalBehaviourDetected(a.class, track)
	}
}

// isAbnormal computes pd = shipCount/totalCount for the given 0-based
// indices. A cell without statistics, or with no more than
// CellShipCountMin observations, has pd = 1.
func (a *statistical) isAbnormal(ctx context.Context, cell grid.CellID, typeKey, lengthKey, valueKey int) (bool, error) {
	pd := 1.0
	h, err := a.repo.Get(ctx, a.feature, cell)
	switch {
	case err == nil:
		total := h.Total()
		if total > uint64(a.cfg.CellShipCountMin) {
			count := h.Count(typeKey, lengthKey, valueKey)
			pd = float64(count) / float64(total)
			logging.Debug().
				Str("analysis", a.name).
				Int64("cell", int64(cell)).
				Int("ship_type", typeKey).
				Int("ship_length", lengthKey).
				Int("value", valueKey).
				Uint64("ship_count", count).
				Uint64("total_count", total).
				Float64("pd", pd).
				Msg("statistics compared")
		}
	case errors.Is(err, statistics.ErrNotFound):
	default:
		return false, err
	}
	return pd < a.cfg.PD, nil
}

func (a *statistical) onTrackStale(ev tracker.TrackStaleEvent) {
	a.manager.TrackStaleDetected(a.class, ev.Track)
	a.lowerIfExists(a.class, ev.Track)
}

func (a *statistical) buildEvent(track *tracker.Track) *models.Event {
	e := newTrackEvent(a.class, track)
	if e == nil {
		return nil
	}

	shipType, _ := track.ShipType()
	length, _ := track.VesselLength()
	cog, _ := track.CourseOverGround()
	sog, _ := track.SpeedOverGround()

	typeCategory := categorizer.ShipType(shipType)
	lengthCategory := categorizer.ShipLength(length)
	cogCategory := categorizer.CourseOverGround(cog)
	sogCategory := a.speeds.Bucket(sog)

	e.ShipType = typeCategory
	e.ShipLength = lengthCategory
	switch a.class {
	case models.EventClassCourseOverGround:
		e.CourseOverGround = cogCategory
	case models.EventClassSpeedOverGround:
		e.SpeedOverGround = sogCategory
	}
	e.Description = fmt.Sprintf("cog:%.0f(%s) sog:%.1f(%s) type:%d(%s) size:%d(%s)",
		cog, categorizer.CourseOverGroundName(cogCategory),
		sog, a.speeds.SpeedOverGroundName(sogCategory),
		shipType, categorizer.ShipTypeName(typeCategory),
		length, categorizer.ShipLengthName(lengthCategory))

	addPreviousTrackingPoints(e, a.class, track, false)
	return e
}

// CourseOverGroundAnalysis compares a vessel's course with the courses
// sailed in the cell by vessels of the same type and size.
type CourseOverGroundAnalysis struct {
	statistical
}

// NewCourseOverGroundAnalysis creates the analysis.
func NewCourseOverGroundAnalysis(cfg StatisticalConfig, repo statistics.Repository, deps Deps) *CourseOverGroundAnalysis {
	a := &CourseOverGroundAnalysis{statistical{
		cfg:     cfg,
		class:   models.EventClassCourseOverGround,
		feature: statistics.FeatureCourseOverGround,
		repo:    repo,
		speeds:  categorizer.DefaultSpeedTable(),
	}}
	a.value = func(t *tracker.Track) (int, string) {
		cog, ok := t.CourseOverGround()
		if !ok {
			return 0, StatUnknownCourse
		}
		return categorizer.CourseOverGround(cog), ""
	}
	a.init("CourseOverGroundAnalysis", cfg.Enabled, deps)
	return a
}

// SpeedOverGroundAnalysis compares a vessel's speed with the speeds sailed
// in the cell by vessels of the same type and size.
type SpeedOverGroundAnalysis struct {
	statistical
}

// NewSpeedOverGroundAnalysis creates the analysis. speeds must be the table
// the statistics were trained with.
func NewSpeedOverGroundAnalysis(cfg StatisticalConfig, speeds categorizer.SpeedTable, repo statistics.Repository, deps Deps) *SpeedOverGroundAnalysis {
	a := &SpeedOverGroundAnalysis{statistical{
		cfg:      cfg,
		class:    models.EventClassSpeedOverGround,
		feature:  statistics.FeatureSpeedOverGround,
		repo:     repo,
		speeds:   speeds,
		excluded: excludedFromStatistics,
	}}
	a.value = func(t *tracker.Track) (int, string) {
		sog, ok := t.SpeedOverGround()
		if !ok {
			return 0, StatUnknownSpeed
		}
		return speeds.Bucket(sog) - 1, ""
	}
	a.init("SpeedOverGroundAnalysis", cfg.Enabled, deps)
	return a
}

// ShipTypeAndSizeAnalysis checks whether vessels of this type and size are
// normally seen in the cell at all.
type ShipTypeAndSizeAnalysis struct {
	statistical
}

// NewShipTypeAndSizeAnalysis creates the analysis.
func NewShipTypeAndSizeAnalysis(cfg StatisticalConfig, repo statistics.Repository, deps Deps) *ShipTypeAndSizeAnalysis {
	a := &ShipTypeAndSizeAnalysis{statistical{
		cfg:      cfg,
		class:    models.EventClassShipSizeOrType,
		feature:  statistics.FeatureShipTypeAndSize,
		repo:     repo,
		speeds:   categorizer.DefaultSpeedTable(),
		excluded: excludedFromStatistics,
	}}
	a.value = func(*tracker.Track) (int, string) { return 0, "" }
	a.init("ShipTypeAndSizeAnalysis", cfg.Enabled, deps)
	return a
}
