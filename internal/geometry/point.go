// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a planar point in metres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rotate turns p counter-clockwise by thetaDeg degrees about pivot:
//
//	x' = x0 + cos(θ)(x-x0) - sin(θ)(y-y0)
//	y' = y0 + sin(θ)(x-x0) + cos(θ)(y-y0)
func (p Point) Rotate(pivot Point, thetaDeg float64) Point {
	v := r2.Rotate(p.vec(), toRadians(thetaDeg), pivot.vec())
	return Point{X: v.X, Y: v.Y}
}

// DistanceTo returns the euclidean distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	return r2.Norm(r2.Sub(q.vec(), p.vec()))
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
