// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package grid quantizes geodetic positions into fixed-size grid cells.
//
// Cell ids address trained statistics on disk, so the mapping from
// (lat, lon, resolution) to a CellID must never change between releases.
// Cells are numbered row-major from the south-west corner (-90, -180):
//
//	row    = floor((lat + 90) / resolution)
//	col    = floor((lon + 180) / resolution)
//	cellID = row * columns + col
//
// where columns = ceil(360 / resolution).
package grid

import (
	"fmt"
	"math"
)

// CellID identifies one grid square at a given resolution.
type CellID int64

// DefaultResolution is roughly 200 m of latitude.
const DefaultResolution = 0.0018

// Grid maps positions to cells at a fixed resolution in degrees.
type Grid struct {
	resolution float64
	columns    int64
}

// New creates a grid. Resolution is in degrees and must be positive.
func New(resolution float64) (*Grid, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("grid resolution must be a positive number of degrees, got %v", resolution)
	}
	return &Grid{
		resolution: resolution,
		columns:    int64(math.Ceil(360.0 / resolution)),
	}, nil
}

// Resolution returns the cell size in degrees.
func (g *Grid) Resolution() float64 {
	return g.resolution
}

// CellOf returns the cell containing (lat, lon).
func (g *Grid) CellOf(lat, lon float64) CellID {
	row := int64(math.Floor((clampLatitude(lat) + 90.0) / g.resolution))
	col := int64(math.Floor((normalizeLongitude(lon) + 180.0) / g.resolution))
	if col >= g.columns {
		col = g.columns - 1
	}
	return CellID(row*g.columns + col)
}

// Bounds returns the south-west and north-east corners of a cell.
func (g *Grid) Bounds(id CellID) (south, west, north, east float64) {
	row := int64(id) / g.columns
	col := int64(id) % g.columns
	south = float64(row)*g.resolution - 90.0
	west = float64(col)*g.resolution - 180.0
	return south, west, south + g.resolution, west + g.resolution
}

// CellOf is a convenience wrapper for one-off lookups. An invalid
// resolution falls back to DefaultResolution.
func CellOf(lat, lon, resolution float64) CellID {
	g, err := New(resolution)
	if err != nil {
		g, _ = New(DefaultResolution)
	}
	return g.CellOf(lat, lon)
}

func clampLatitude(lat float64) float64 {
	switch {
	case math.IsNaN(lat):
		return 0
	case lat < -90:
		return -90
	case lat > 90:
		return 90
	}
	return lat
}

// normalizeLongitude folds lon into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0
	}
	lon = math.Mod(lon+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}
