// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean earth radius used for distances.
const EarthRadiusMeters = 6371008.8

// MetersPerNauticalMile converts knots to metres per hour.
const MetersPerNauticalMile = 1852.0

// Position is a geodetic position in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPosition returns a position.
func NewPosition(lat, lon float64) Position {
	return Position{Lat: lat, Lon: lon}
}

// IsValid reports whether the position lies within the geodetic ranges.
// AIS uses lat 91 / lon 181 to signal "not available".
func (p Position) IsValid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lat, p.Lon)
}

// DistanceTo returns the great-circle distance in metres (haversine).
func (p Position) DistanceTo(q Position) float64 {
	lat1 := toRadians(p.Lat)
	lat2 := toRadians(q.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(q.Lon - p.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RhumbLineDistanceTo returns the loxodromic distance in metres.
func (p Position) RhumbLineDistanceTo(q Position) float64 {
	lat1 := toRadians(p.Lat)
	lat2 := toRadians(q.Lat)
	dLat := lat2 - lat1
	dLon := math.Abs(toRadians(q.Lon - p.Lon))
	if dLon > math.Pi {
		dLon = 2*math.Pi - dLon
	}

	dPsi := math.Log(math.Tan(lat2/2+math.Pi/4) / math.Tan(lat1/2+math.Pi/4))
	qq := math.Cos(lat1)
	if math.Abs(dPsi) > 1e-12 {
		qq = dLat / dPsi
	}
	return math.Sqrt(dLat*dLat+qq*qq*dLon*dLon) * EarthRadiusMeters
}

// RhumbLineBearingTo returns the constant compass bearing from p to q.
func (p Position) RhumbLineBearingTo(q Position) float64 {
	lat1 := toRadians(p.Lat)
	lat2 := toRadians(q.Lat)
	dLon := toRadians(q.Lon - p.Lon)
	if math.Abs(dLon) > math.Pi {
		if dLon > 0 {
			dLon = -(2*math.Pi - dLon)
		} else {
			dLon = 2*math.Pi + dLon
		}
	}
	dPsi := math.Log(math.Tan(lat2/2+math.Pi/4) / math.Tan(lat1/2+math.Pi/4))
	return NormalizeDegrees(toDegrees(math.Atan2(dLon, dPsi)))
}

// RhumbLineDestination returns the position reached by sailing distance
// metres from p on a constant compass bearing.
func (p Position) RhumbLineDestination(bearing, distance float64) Position {
	delta := distance / EarthRadiusMeters
	lat1 := toRadians(p.Lat)
	lon1 := toRadians(p.Lon)
	theta := toRadians(bearing)

	dLat := delta * math.Cos(theta)
	lat2 := lat1 + dLat
	if math.Abs(lat2) > math.Pi/2 {
		if lat2 > 0 {
			lat2 = math.Pi - lat2
		} else {
			lat2 = -math.Pi - lat2
		}
	}

	dPsi := math.Log(math.Tan(lat2/2+math.Pi/4) / math.Tan(lat1/2+math.Pi/4))
	q := math.Cos(lat1)
	if math.Abs(dPsi) > 1e-12 {
		q = dLat / dPsi
	}
	dLon := delta * math.Sin(theta) / q
	lon2 := lon1 + dLon

	return Position{
		Lat: toDegrees(lat2),
		Lon: NormalizeDegrees(toDegrees(lon2)+180.0) - 180.0,
	}
}

// BoundingBox is an axis-aligned area of interest in degrees.
type BoundingBox struct {
	North float64 `koanf:"north" json:"north"`
	East  float64 `koanf:"east" json:"east"`
	South float64 `koanf:"south" json:"south"`
	West  float64 `koanf:"west" json:"west"`
}

// IsZero reports whether no box has been configured.
func (b BoundingBox) IsZero() bool {
	return b.North == 0 && b.East == 0 && b.South == 0 && b.West == 0
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Position) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lon >= b.West && p.Lon <= b.East
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[N %.4f, E %.4f, S %.4f, W %.4f]", b.North, b.East, b.South, b.West)
}
