// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import "math"

// ProjectionRadius is the sphere radius of the local projection in metres.
const ProjectionRadius = 6356752.3

// CoordinateTransformer projects geodetic positions onto a plane tangent to
// the sphere at a reference point (stereographic projection). x grows east
// and y grows north, both in metres.
type CoordinateTransformer struct {
	lon0, lat0       float64
	sinLat0, cosLat0 float64
}

// NewCoordinateTransformer creates a projection centred on (lon0, lat0).
func NewCoordinateTransformer(lon0, lat0 float64) *CoordinateTransformer {
	phi0 := toRadians(lat0)
	return &CoordinateTransformer{
		lon0:    lon0,
		lat0:    lat0,
		sinLat0: math.Sin(phi0),
		cosLat0: math.Cos(phi0),
	}
}

// Reference returns the projection origin.
func (t *CoordinateTransformer) Reference() Position {
	return Position{Lat: t.lat0, Lon: t.lon0}
}

// LonLatToXY projects (lon, lat) to planar metres.
// A point antipodal to the origin maps to (0, 0).
func (t *CoordinateTransformer) LonLatToXY(lon, lat float64) (x, y float64) {
	phi := toRadians(lat)
	dLambda := toRadians(lon - t.lon0)
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDLambda := math.Cos(dLambda)

	denom := 1 + t.sinLat0*sinPhi + t.cosLat0*cosPhi*cosDLambda
	if denom == 0 {
		return 0, 0
	}
	k := 2 * ProjectionRadius / denom
	x = k * cosPhi * math.Sin(dLambda)
	y = k * (t.cosLat0*sinPhi - t.sinLat0*cosPhi*cosDLambda)
	return x, y
}

// Project is LonLatToXY for a Position.
func (t *CoordinateTransformer) Project(p Position) Point {
	x, y := t.LonLatToXY(p.Lon, p.Lat)
	return Point{X: x, Y: y}
}

// XYToLonLat is the inverse of LonLatToXY.
func (t *CoordinateTransformer) XYToLonLat(x, y float64) (lon, lat float64) {
	rho := math.Hypot(x, y)
	if rho == 0 {
		return t.lon0, t.lat0
	}
	c := 2 * math.Atan(rho/(2*ProjectionRadius))
	sinC, cosC := math.Sin(c), math.Cos(c)

	lat = toDegrees(math.Asin(cosC*t.sinLat0 + y*sinC*t.cosLat0/rho))
	lon = t.lon0 + toDegrees(math.Atan2(x*sinC, rho*t.cosLat0*cosC-y*t.sinLat0*sinC))
	return lon, lat
}

// Unproject is XYToLonLat for a Point.
func (t *CoordinateTransformer) Unproject(p Point) Position {
	lon, lat := t.XYToLonLat(p.X, p.Y)
	return Position{Lat: lat, Lon: lon}
}
