// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"fmt"

	"github.com/tomtom215/seawatch/internal/categorizer"
)

// Feature names under which histograms are stored.
const (
	FeatureCourseOverGround = "CourseOverGroundFeature"
	FeatureSpeedOverGround  = "SpeedOverGroundStatistic"
	FeatureShipTypeAndSize  = "ShipTypeAndSizeStatistic"
)

// Histogram holds trained vessel counts for one cell, indexed
// [shipType][shipLength][value] with 0-based indices.
type Histogram struct {
	ShipTypes   int      `json:"ship_types"`
	ShipLengths int      `json:"ship_lengths"`
	Values      int      `json:"values"`
	Counts      []uint64 `json:"counts"`
}

// NewHistogram allocates a zeroed histogram.
func NewHistogram(shipTypes, shipLengths, values int) *Histogram {
	return &Histogram{
		ShipTypes:   shipTypes,
		ShipLengths: shipLengths,
		Values:      values,
		Counts:      make([]uint64, shipTypes*shipLengths*values),
	}
}

// NewFeatureHistogram allocates a histogram shaped for a known feature.
// speedBuckets is the number of speed buckets in use.
func NewFeatureHistogram(feature string, speedBuckets int) (*Histogram, error) {
	switch feature {
	case FeatureCourseOverGround:
		return NewHistogram(categorizer.NumShipTypeBuckets, categorizer.NumShipLengthBuckets, categorizer.NumCourseOverGroundBuckets), nil
	case FeatureSpeedOverGround:
		return NewHistogram(categorizer.NumShipTypeBuckets, categorizer.NumShipLengthBuckets, speedBuckets), nil
	case FeatureShipTypeAndSize:
		return NewHistogram(categorizer.NumShipTypeBuckets, categorizer.NumShipLengthBuckets, 1), nil
	default:
		return nil, fmt.Errorf("unknown feature %q", feature)
	}
}

func (h *Histogram) index(shipType, shipLength, value int) (int, bool) {
	if shipType < 0 || shipType >= h.ShipTypes ||
		shipLength < 0 || shipLength >= h.ShipLengths ||
		value < 0 || value >= h.Values {
		return 0, false
	}
	return (shipType*h.ShipLengths+shipLength)*h.Values + value, true
}

// Count returns the count at the given indices, or 0 when out of range.
func (h *Histogram) Count(shipType, shipLength, value int) uint64 {
	i, ok := h.index(shipType, shipLength, value)
	if !ok || i >= len(h.Counts) {
		return 0
	}
	return h.Counts[i]
}

// Add increments the count at the given indices by n. It reports whether
// the indices were in range.
func (h *Histogram) Add(shipType, shipLength, value int, n uint64) bool {
	i, ok := h.index(shipType, shipLength, value)
	if !ok || i >= len(h.Counts) {
		return false
	}
	h.Counts[i] += n
	return true
}

// Total returns the sum over every bucket of the cell.
func (h *Histogram) Total() uint64 {
	var sum uint64
	for _, c := range h.Counts {
		sum += c
	}
	return sum
}

// Validate checks that the shape and the counts agree.
func (h *Histogram) Validate() error {
	if h.ShipTypes <= 0 || h.ShipLengths <= 0 || h.Values <= 0 {
		return fmt.Errorf("histogram has empty dimension %dx%dx%d", h.ShipTypes, h.ShipLengths, h.Values)
	}
	if want := h.ShipTypes * h.ShipLengths * h.Values; len(h.Counts) != want {
		return fmt.Errorf("histogram has %d counts, want %d", len(h.Counts), want)
	}
	return nil
}

// Clone returns a deep copy of h.
func (h *Histogram) Clone() *Histogram {
	c := *h
	c.Counts = append([]uint64(nil), h.Counts...)
	return &c
}

// Merge adds the counts of o to h. Both must have the same shape.
func (h *Histogram) Merge(o *Histogram) error {
	if h.ShipTypes != o.ShipTypes || h.ShipLengths != o.ShipLengths || h.Values != o.Values {
		return fmt.Errorf("cannot merge %dx%dx%d histogram into %dx%dx%d",
			o.ShipTypes, o.ShipLengths, o.Values, h.ShipTypes, h.ShipLengths, h.Values)
	}
	if len(h.Counts) != len(o.Counts) {
		return fmt.Errorf("cannot merge %d counts into %d", len(o.Counts), len(h.Counts))
	}
	for i, c := range o.Counts {
		h.Counts[i] += c
	}
	return nil
}
