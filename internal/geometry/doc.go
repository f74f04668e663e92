// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package geometry provides the geodesy and planar geometry used by the
// vessel analyses.
//
// Geodetic work (great-circle and rhumb-line distances, dead reckoning and
// the local stereographic projection) lives in position.go and
// transformer.go. Everything downstream of the projection is planar:
// points, rotations and oriented ellipses measured in metres relative to a
// geodetic reference point.
//
// # Conventions
//
// Compass directions (course, heading) are degrees clockwise from north.
// Cartesian angles are degrees counter-clockwise from the positive x axis
// (east). Use CompassToCartesian to convert between them.
//
// # Safety zones
//
// SafetyZoneService builds two kinds of ellipse for a vessel:
//
//   - SafetyZone: the dynamic envelope a vessel keeps around itself
//   - VesselExtent: the physical hull footprint
//
// A close encounter is an intersection between one vessel's safety zone and
// another vessel's extent, tested with Ellipse.Intersects.
package geometry
