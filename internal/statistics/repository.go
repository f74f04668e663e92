// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/logging"
)

// FormatVersion is the histogram encoding version written to metadata.
const FormatVersion = 1

var (
	// ErrNotFound is returned when no histogram or metadata is stored.
	ErrNotFound = errors.New("statistics: not found")

	// ErrMissingFeature is returned by Validate when the store cannot
	// serve a required feature.
	ErrMissingFeature = errors.New("statistics: required feature missing")

	// ErrSpeedTableMismatch is returned when the speed histograms were
	// trained with a different speed table than the one configured.
	ErrSpeedTableMismatch = errors.New("statistics: speed table mismatch")
)

// Metadata describes a trained statistics set.
type Metadata struct {
	GridResolution float64  `json:"grid_resolution"`
	FormatVersion  int      `json:"format_version"`
	Features       []string `json:"features"`
	// SpeedBuckets is the value count of the speed histograms, recorded
	// on the first speed Put.
	SpeedBuckets int `json:"speed_buckets,omitempty"`
	// SpeedBounds is the speed table used in training, when known.
	SpeedBounds []float64 `json:"speed_bounds,omitempty"`
}

// recordShape notes the shape of a histogram about to be stored under
// feature and rejects shapes that disagree with earlier puts.
func (m *Metadata) recordShape(feature string, h *Histogram) error {
	if feature != FeatureSpeedOverGround {
		return nil
	}
	if m.SpeedBuckets == 0 {
		m.SpeedBuckets = h.Values
		return nil
	}
	if m.SpeedBuckets != h.Values {
		return fmt.Errorf("%w: speed histogram has %d values, store holds %d",
			ErrSpeedTableMismatch, h.Values, m.SpeedBuckets)
	}
	return nil
}

// HasFeature reports whether feature was trained.
func (m Metadata) HasFeature(feature string) bool {
	return slices.Contains(m.Features, feature)
}

// Repository looks up trained histograms by feature and cell. Returned
// histograms are shared and must not be modified.
type Repository interface {
	Get(ctx context.Context, feature string, cell grid.CellID) (*Histogram, error)
	Put(ctx context.Context, feature string, cell grid.CellID, h *Histogram) error
	Metadata(ctx context.Context) (Metadata, error)
}

// MetadataWriter is implemented by stores whose metadata can be
// rewritten, such as the target of a training run.
type MetadataWriter interface {
	SetMetadata(ctx context.Context, md Metadata) error
}

// resolutionTolerance absorbs float noise from config round trips.
const resolutionTolerance = 1e-9

// Validate checks that repo was trained for the given grid resolution and
// holds every feature. Any error is fatal to inference.
func Validate(ctx context.Context, repo Repository, resolution float64, features ...string) error {
	md, err := repo.Metadata(ctx)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: statistics metadata not found", ErrMissingFeature)
	}
	if err != nil {
		return fmt.Errorf("read statistics metadata: %w", err)
	}

	if md.FormatVersion != FormatVersion {
		return fmt.Errorf("statistics format version %d, want %d", md.FormatVersion, FormatVersion)
	}
	if math.Abs(md.GridResolution-resolution) > resolutionTolerance {
		return fmt.Errorf("statistics trained for grid resolution %v, configured %v", md.GridResolution, resolution)
	}
	for _, f := range features {
		if !md.HasFeature(f) {
			return fmt.Errorf("%w: %s", ErrMissingFeature, f)
		}
	}

	logging.Info().
		Float64("grid_resolution", md.GridResolution).
		Strs("features", md.Features).
		Msg("statistics validated")
	return nil
}

// ValidateSpeedTable checks that the speed histograms in repo were
// trained with speeds. Stores that recorded their bounds must match them
// exactly; older stores are checked on bucket count only.
func ValidateSpeedTable(ctx context.Context, repo Repository, speeds categorizer.SpeedTable) error {
	md, err := repo.Metadata(ctx)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: statistics metadata not found", ErrMissingFeature)
	}
	if err != nil {
		return fmt.Errorf("read statistics metadata: %w", err)
	}
	if !md.HasFeature(FeatureSpeedOverGround) {
		return fmt.Errorf("%w: %s", ErrMissingFeature, FeatureSpeedOverGround)
	}

	if len(md.SpeedBounds) > 0 {
		if !slices.Equal(md.SpeedBounds, speeds.Bounds()) {
			return fmt.Errorf("%w: trained with bounds %v, configured %v",
				ErrSpeedTableMismatch, md.SpeedBounds, speeds.Bounds())
		}
		return nil
	}
	if md.SpeedBuckets != speeds.Buckets() {
		return fmt.Errorf("%w: trained with %d buckets, configured %d",
			ErrSpeedTableMismatch, md.SpeedBuckets, speeds.Buckets())
	}
	return nil
}
