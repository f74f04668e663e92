// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package training

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/statistics"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// Skip reasons counted per feature.
const (
	SkipUnknownCell         = "unknown cell"
	SkipUnknownShipType     = "unknown ship type"
	SkipUnknownShipLength   = "unknown ship length"
	SkipUnknownSpeed        = "unknown speed over ground"
	SkipUnknownCourse       = "unknown course over ground"
	SkipBelowCourseSOGMin   = "below course sog min"
	SkipHistogramOutOfRange = "bucket out of range"
)

// Config tunes what is counted.
type Config struct {
	// CourseSOGMin is the speed in knots below which courses are not
	// counted. Drifting vessels report meaningless courses.
	CourseSOGMin float64 `koanf:"course_sog_min" validate:"gte=0"`
}

// DefaultConfig returns the training defaults.
func DefaultConfig() Config {
	return Config{CourseSOGMin: 2.0}
}

// FeatureStats counts what happened to the cell changes seen by one
// feature.
type FeatureStats struct {
	Processed int64            `json:"processed"`
	Counted   int64            `json:"counted"`
	Skipped   map[string]int64 `json:"skipped,omitempty"`
}

type cellKey struct {
	feature string
	cell    grid.CellID
}

// Builder accumulates histograms in memory. It is safe for use from the
// tracker's worker pool.
type Builder struct {
	cfg        Config
	resolution float64
	speeds     categorizer.SpeedTable

	mu      sync.Mutex
	pending map[cellKey]*statistics.Histogram
	stats   map[string]*FeatureStats
}

// NewBuilder creates a builder for statistics on a grid of the given
// resolution, bucketing speeds with speeds.
func NewBuilder(cfg Config, resolution float64, speeds categorizer.SpeedTable) *Builder {
	b := &Builder{
		cfg:        cfg,
		resolution: resolution,
		speeds:     speeds,
		pending:    make(map[cellKey]*statistics.Histogram),
		stats:      make(map[string]*FeatureStats),
	}
	for _, f := range features {
		b.stats[f] = &FeatureStats{Skipped: make(map[string]int64)}
	}
	return b
}

var features = []string{
	statistics.FeatureShipTypeAndSize,
	statistics.FeatureSpeedOverGround,
	statistics.FeatureCourseOverGround,
}

// Attach subscribes the builder to the tracker's cell changes.
func (b *Builder) Attach(s *tracker.Service) {
	s.OnCellChanged(b.onCellChanged)
	logging.Info().
		Float64("grid_resolution", b.resolution).
		Float64("course_sog_min", b.cfg.CourseSOGMin).
		Msg("statistics builder attached")
}

func (b *Builder) onCellChanged(ev tracker.CellChangedEvent) {
	track := ev.Track
	cell, cellOK := track.CellID()
	shipType, typeOK := track.ShipType()
	length, lengthOK := track.VesselLength()
	sog, sogOK := track.SpeedOverGround()
	cog, cogOK := track.CourseOverGround()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range features {
		b.stats[f].Processed++
	}

	var reason string
	switch {
	case !cellOK:
		reason = SkipUnknownCell
	case !typeOK:
		reason = SkipUnknownShipType
	case !lengthOK:
		reason = SkipUnknownShipLength
	}
	if reason != "" {
		for _, f := range features {
			b.stats[f].Skipped[reason]++
		}
		return
	}

	typeKey := categorizer.ShipType(shipType) - 1
	lengthKey := categorizer.ShipLength(length) - 1

	b.count(statistics.FeatureShipTypeAndSize, cell, typeKey, lengthKey, 0)

	if !sogOK {
		b.stats[statistics.FeatureSpeedOverGround].Skipped[SkipUnknownSpeed]++
		b.stats[statistics.FeatureCourseOverGround].Skipped[SkipUnknownSpeed]++
		return
	}
	b.count(statistics.FeatureSpeedOverGround, cell, typeKey, lengthKey, b.speeds.Bucket(sog)-1)

	switch {
	case sog < b.cfg.CourseSOGMin:
		b.stats[statistics.FeatureCourseOverGround].Skipped[SkipBelowCourseSOGMin]++
	case !cogOK:
		b.stats[statistics.FeatureCourseOverGround].Skipped[SkipUnknownCourse]++
	default:
		b.count(statistics.FeatureCourseOverGround, cell, typeKey, lengthKey, categorizer.CourseOverGround(cog))
	}
}

// count adds one vessel to the pending histogram. Callers hold mu.
func (b *Builder) count(feature string, cell grid.CellID, typeKey, lengthKey, valueKey int) {
	k := cellKey{feature, cell}
	h, ok := b.pending[k]
	if !ok {
		var err error
		h, err = statistics.NewFeatureHistogram(feature, b.speeds.Buckets())
		if err != nil {
			logging.Error().Err(err).Str("feature", feature).Msg("cannot allocate histogram")
			return
		}
		b.pending[k] = h
	}
	if !h.Add(typeKey, lengthKey, valueKey, 1) {
		b.stats[feature].Skipped[SkipHistogramOutOfRange]++
		return
	}
	b.stats[feature].Counted++
}

// Stats returns a copy of the per-feature counters.
func (b *Builder) Stats() map[string]FeatureStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]FeatureStats, len(b.stats))
	for f, s := range b.stats {
		c := *s
		c.Skipped = make(map[string]int64, len(s.Skipped))
		for r, n := range s.Skipped {
			c.Skipped[r] = n
		}
		out[f] = c
	}
	return out
}

// Pending returns the number of cell histograms not yet flushed.
func (b *Builder) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush merges the pending histograms into repo and returns the number
// of cell histograms written. Counts already in repo are kept, so
// repeated runs over different recordings accumulate. Flush refuses a
// store trained for another grid resolution or speed table, and records
// the speed table in stores that implement statistics.MetadataWriter.
//
// Flush must not run concurrently with itself.
func (b *Builder) Flush(ctx context.Context, repo statistics.Repository) (int, error) {
	if err := b.checkTarget(ctx, repo); err != nil {
		return 0, err
	}

	b.mu.Lock()
	pending := b.pending
	b.pending = make(map[cellKey]*statistics.Histogram)
	b.mu.Unlock()

	keys := make([]cellKey, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, c cellKey) int {
		return cmp.Or(cmp.Compare(a.feature, c.feature), cmp.Compare(a.cell, c.cell))
	})

	written := 0
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		h := pending[k]
		existing, err := repo.Get(ctx, k.feature, k.cell)
		switch {
		case err == nil:
			merged := existing.Clone()
			if err := merged.Merge(h); err != nil {
				return written, fmt.Errorf("merge %s/%d: %w", k.feature, k.cell, err)
			}
			h = merged
		case errors.Is(err, statistics.ErrNotFound):
		default:
			return written, fmt.Errorf("read %s/%d: %w", k.feature, k.cell, err)
		}
		if err := repo.Put(ctx, k.feature, k.cell, h); err != nil {
			return written, err
		}
		written++
	}

	if written > 0 {
		if err := b.recordSpeedTable(ctx, repo); err != nil {
			return written, err
		}
	}

	logging.Info().Int("cells", written).Msg("statistics flushed")
	return written, nil
}

// checkTarget rejects a store that was trained with another grid or
// speed table. An empty store is accepted.
func (b *Builder) checkTarget(ctx context.Context, repo statistics.Repository) error {
	md, err := repo.Metadata(ctx)
	if errors.Is(err, statistics.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read statistics metadata: %w", err)
	}
	if err := statistics.Validate(ctx, repo, b.resolution); err != nil {
		return err
	}
	if md.HasFeature(statistics.FeatureSpeedOverGround) {
		return statistics.ValidateSpeedTable(ctx, repo, b.speeds)
	}
	return nil
}

func (b *Builder) recordSpeedTable(ctx context.Context, repo statistics.Repository) error {
	w, ok := repo.(statistics.MetadataWriter)
	if !ok {
		return nil
	}
	md, err := repo.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("read statistics metadata: %w", err)
	}
	md.SpeedBounds = b.speeds.Bounds()
	if err := w.SetMetadata(ctx, md); err != nil {
		return fmt.Errorf("write statistics metadata: %w", err)
	}
	return nil
}
