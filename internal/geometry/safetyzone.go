// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package geometry

import "math"

// SafetyZoneConfig holds the safety ellipse multipliers.
type SafetyZoneConfig struct {
	// LengthFactor scales the zone's major axis relative to the vessel length.
	LengthFactor float64 `koanf:"length" json:"length" validate:"gt=0"`

	// BreadthFactor scales the zone's minor axis relative to the beam.
	BreadthFactor float64 `koanf:"breadth" json:"breadth" validate:"gt=0"`

	// AfterFactor is how far the zone extends behind the stern, in vessel lengths.
	AfterFactor float64 `koanf:"behind" json:"behind" validate:"gte=0"`
}

// DefaultSafetyZoneConfig returns the standard multipliers.
func DefaultSafetyZoneConfig() SafetyZoneConfig {
	return SafetyZoneConfig{
		LengthFactor:  2.0,
		BreadthFactor: 3.0,
		AfterFactor:   0.25,
	}
}

// Hull describes a vessel's dimensions relative to its GPS antenna.
type Hull struct {
	LOA          float64
	Beam         float64
	DimStern     float64
	DimStarboard float64
}

// SafetyZoneService computes safety zones and vessel extents.
type SafetyZoneService struct {
	cfg SafetyZoneConfig
}

// NewSafetyZoneService creates a service with the given multipliers.
func NewSafetyZoneService(cfg SafetyZoneConfig) *SafetyZoneService {
	return &SafetyZoneService{cfg: cfg}
}

// SafetyZone returns the dynamic safety envelope of a vessel at pos sailing
// on cog. The envelope does not currently scale with speed; sog is accepted
// so callers need not change when it does.
func (s *SafetyZoneService) SafetyZone(ref, pos Position, cog, sog float64, hull Hull) Ellipse {
	_ = sog
	const v = 1.0
	l1 := math.Max(s.cfg.LengthFactor*v, 1.0+s.cfg.AfterFactor*v*2.0)
	b1 := math.Max(s.cfg.BreadthFactor*v, 1.5)
	xc := -s.cfg.AfterFactor*v + 0.5*l1
	return createEllipse(ref, pos, cog, hull, l1, b1, xc)
}

// VesselExtent returns the ellipse enclosing the hull of a vessel at pos
// with the given heading.
func (s *SafetyZoneService) VesselExtent(ref, pos Position, hdg float64, hull Hull) Ellipse {
	return createEllipse(ref, pos, hdg, hull, 1.0, 1.0, 0.5)
}

// CentreOfVessel returns the geodetic position of the hull's geometric
// centre, given the antenna position and the vessel heading.
func CentreOfVessel(pos Position, hdg float64, hull Hull) Position {
	t := NewCoordinateTransformer(pos.Lon, pos.Lat)
	// Offset from the antenna in the vessel frame: x towards the bow, y to port.
	offset := Point{
		X: hull.LOA/2 - hull.DimStern,
		Y: hull.Beam/2 - hull.DimStarboard,
	}
	return t.Unproject(offset.Rotate(Point{}, CompassToCartesian(hdg)))
}

func createEllipse(ref, pos Position, direction float64, hull Hull, l1, b1, xc float64) Ellipse {
	theta := CompassToCartesian(direction)
	antenna := NewCoordinateTransformer(ref.Lon, ref.Lat).Project(pos)

	centre := Point{
		X: antenna.X - hull.DimStern + hull.LOA*xc,
		Y: antenna.Y + hull.DimStarboard - hull.Beam/2,
	}.Rotate(antenna, theta)

	return NewEllipse(ref, centre.X, centre.Y, hull.LOA*l1/2, hull.Beam*b1/2, theta)
}
