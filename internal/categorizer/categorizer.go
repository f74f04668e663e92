// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package categorizer maps vessel attributes to the small integer buckets
// that index the trained statistics.
//
// Bucket boundaries are part of the statistics format: changing them
// requires retraining every histogram. Inputs that fall outside every range
// map to the last ("undefined") bucket; no function here returns an error
// for a value.
package categorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Bucket counts.
const (
	NumShipTypeBuckets         = 8
	NumShipLengthBuckets       = 6
	NumCourseOverGroundBuckets = 12
)

// Ship type buckets (1-based).
const (
	ShipTypeTanker = iota + 1
	ShipTypeCargo
	ShipTypePassenger
	ShipTypeSupport
	ShipTypeFishing
	ShipTypeClassB
	ShipTypeOther
	ShipTypeUndefined
)

// ShipType maps an ITU-R M.1371 ship type code to a bucket in 1..8.
func ShipType(code int) int {
	switch {
	case code >= 80 && code <= 89:
		return ShipTypeTanker
	case code >= 70 && code <= 79:
		return ShipTypeCargo
	case (code >= 40 && code <= 49) || (code >= 60 && code <= 69):
		return ShipTypePassenger
	case (code >= 31 && code <= 35) || (code >= 50 && code <= 55):
		return ShipTypeSupport
	case code == 30:
		return ShipTypeFishing
	case code == 36 || code == 37:
		return ShipTypeClassB
	case (code >= 1 && code <= 29) || (code >= 90 && code <= 99):
		return ShipTypeOther
	default:
		return ShipTypeUndefined
	}
}

// ShipLength maps a length overall in metres to a bucket in 1..6.
func ShipLength(metres int) int {
	switch {
	case metres >= 0 && metres < 1:
		return 1
	case metres >= 1 && metres < 50:
		return 2
	case metres >= 50 && metres < 100:
		return 3
	case metres >= 100 && metres < 200:
		return 4
	case metres >= 200 && metres < 999:
		return 5
	default:
		return 6
	}
}

// CourseOverGround maps a course in degrees to a 30 degree sector in 0..11.
// 360 wraps to 0. Negative, infinite and NaN courses map to sector 11.
func CourseOverGround(cog float64) int {
	if math.IsNaN(cog) || math.IsInf(cog, 0) || cog < 0 {
		return NumCourseOverGroundBuckets - 1
	}
	return int(math.Floor(cog/30.0)) % NumCourseOverGroundBuckets
}

// DefaultSpeedBounds are the lower bounds, in knots, of the speed buckets
// used by the trained statistics: [0,1) [1,5) [5,10) [10,15) [15,20) [20,30)
// [30,50). Everything else is undefined.
var DefaultSpeedBounds = []float64{0, 1, 5, 10, 15, 20, 30, 50}

// SpeedTable buckets speeds over ground. Bucket i (1-based) covers
// [Bounds[i-1], Bounds[i]); the last bucket, len(Bounds), collects all
// other values.
type SpeedTable struct {
	bounds []float64
}

// NewSpeedTable validates bounds and builds a table.
func NewSpeedTable(bounds []float64) (SpeedTable, error) {
	if len(bounds) < 2 {
		return SpeedTable{}, errors.New("speed table needs at least two bounds")
	}
	for _, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return SpeedTable{}, fmt.Errorf("speed bound %v is not finite", b)
		}
	}
	if !sort.Float64sAreSorted(bounds) {
		return SpeedTable{}, fmt.Errorf("speed bounds %v are not ascending", bounds)
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] == bounds[i-1] {
			return SpeedTable{}, fmt.Errorf("duplicate speed bound %v", bounds[i])
		}
	}
	return SpeedTable{bounds: append([]float64(nil), bounds...)}, nil
}

// DefaultSpeedTable returns the table built from DefaultSpeedBounds.
func DefaultSpeedTable() SpeedTable {
	t, _ := NewSpeedTable(DefaultSpeedBounds)
	return t
}

// Buckets returns the number of buckets, including the undefined one.
func (t SpeedTable) Buckets() int {
	return len(t.bounds)
}

// Bounds returns a copy of the table's bounds.
func (t SpeedTable) Bounds() []float64 {
	return append([]float64(nil), t.bounds...)
}

// Bucket maps a speed in knots to a bucket in 1..Buckets().
func (t SpeedTable) Bucket(sog float64) int {
	undefined := len(t.bounds)
	if math.IsNaN(sog) || len(t.bounds) == 0 {
		return undefined
	}
	// Index of the first bound strictly greater than sog.
	i := sort.Search(len(t.bounds), func(i int) bool { return t.bounds[i] > sog })
	if i == 0 || i == len(t.bounds) {
		return undefined
	}
	return i
}

// Range returns the [min, max) interval of bucket b.
func (t SpeedTable) Range(b int) (lo, hi float64, ok bool) {
	if b < 1 || b >= len(t.bounds) {
		return 0, 0, false
	}
	return t.bounds[b-1], t.bounds[b], true
}

var defaultSpeeds = DefaultSpeedTable()

// SpeedOverGround maps a speed in knots to a bucket using the default table.
func SpeedOverGround(sog float64) int {
	return defaultSpeeds.Bucket(sog)
}
