// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import "math"

// NormalizeDegrees folds an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// CompassToCartesian converts a compass direction to a cartesian angle.
func CompassToCartesian(compass float64) float64 {
	return NormalizeDegrees(90.0 - compass)
}

// AbsoluteDirectionalDifference returns the smallest angle between two
// directions, in [0, 180].
func AbsoluteDirectionalDifference(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180.0 {
		d = 360.0 - d
	}
	return d
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180.0 }

func toDegrees(rad float64) float64 { return rad * 180.0 / math.Pi }
