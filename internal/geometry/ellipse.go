// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CoincidentCentreMeters is the centre separation below which two ellipses
// are always treated as intersecting.
const CoincidentCentreMeters = 0.1

// Ellipse is an oriented ellipse on the plane of a geodetic reference point.
// Alpha is the half-axis along Theta, Beta the perpendicular half-axis.
// Theta is a cartesian angle in degrees.
type Ellipse struct {
	Reference Position `json:"reference"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Alpha     float64  `json:"alpha"`
	Beta      float64  `json:"beta"`
	Theta     float64  `json:"theta"`
}

// NewEllipse creates an ellipse centred at (x, y) relative to ref.
func NewEllipse(ref Position, x, y, alpha, beta, thetaDeg float64) Ellipse {
	return Ellipse{Reference: ref, X: x, Y: y, Alpha: alpha, Beta: beta, Theta: thetaDeg}
}

// Centre returns the planar centre.
func (e Ellipse) Centre() Point {
	return Point{X: e.X, Y: e.Y}
}

// Intersects approximates an ellipse-ellipse intersection test. Each ellipse
// contributes its radius in the direction of the line joining the centres:
//
//	r(φ) = sqrt(α²β² / (α²sin²φ + β²cos²φ))
//
// where φ is the angle between that line and the ellipse's major axis. The
// ellipses intersect when the centre distance does not exceed r1 + r2.
// Both ellipses must share the same reference point.
func (e Ellipse) Intersects(other Ellipse) bool {
	v := r2.Sub(other.Centre().vec(), e.Centre().vec())
	d := r2.Norm(v)
	if d <= CoincidentCentreMeters {
		return true
	}
	return d-e.directionalRadius(v, d)-other.directionalRadius(v, d) <= 0
}

// Contains reports whether a planar point lies inside or on the ellipse.
func (e Ellipse) Contains(p Point) bool {
	if e.Alpha <= 0 || e.Beta <= 0 {
		return false
	}
	local := p.Rotate(e.Centre(), -e.Theta)
	dx := (local.X - e.X) / e.Alpha
	dy := (local.Y - e.Y) / e.Beta
	return dx*dx+dy*dy <= 1
}

func (e Ellipse) directionalRadius(v r2.Vec, d float64) float64 {
	theta := toRadians(e.Theta)
	h := r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
	cosB := r2.Dot(h, v) / d
	sinB := r2.Cross(h, v) / d

	a2 := e.Alpha * e.Alpha
	b2 := e.Beta * e.Beta
	denom := a2*sinB*sinB + b2*cosB*cosB
	if denom == 0 {
		return 0
	}
	return math.Sqrt(a2 * b2 / denom)
}

func (e Ellipse) String() string {
	return fmt.Sprintf("Ellipse{ref=%s x=%.2f y=%.2f alpha=%.2f beta=%.2f theta=%.1f}",
		e.Reference, e.X, e.Y, e.Alpha, e.Beta, e.Theta)
}
