// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package cache

import (
	"math"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
)

// metersPerDegree is the approximate length of one degree of latitude.
const metersPerDegree = 111_195.0

// SpatialHashGrid buckets positioned entries into square cells so a
// proximity query only scans the cells around the query point.
//
// Insert and Remove are O(1); QueryNearby is O(k) in the entries of the
// scanned cells.
type SpatialHashGrid[K comparable, V any] struct {
	mu       sync.RWMutex
	cells    map[CellKey][]*SpatialEntry[K, V]
	cellSize float64 // degrees
	entries  map[K]*SpatialEntry[K, V]
}

// CellKey is a spatial hash cell coordinate.
type CellKey struct {
	X, Y int
}

// SpatialEntry is a positioned, timestamped value.
type SpatialEntry[K comparable, V any] struct {
	ID        K
	Position  geometry.Position
	Timestamp time.Time
	Data      V
	cellKey   CellKey
}

// NewSpatialHashGrid creates a grid whose cells are about cellSizeMeters
// across in latitude. Non-positive sizes default to 2 km.
func NewSpatialHashGrid[K comparable, V any](cellSizeMeters float64) *SpatialHashGrid[K, V] {
	if cellSizeMeters <= 0 {
		cellSizeMeters = 2000
	}
	return &SpatialHashGrid[K, V]{
		cells:    make(map[CellKey][]*SpatialEntry[K, V]),
		cellSize: cellSizeMeters / metersPerDegree,
		entries:  make(map[K]*SpatialEntry[K, V]),
	}
}

func (g *SpatialHashGrid[K, V]) cellKey(p geometry.Position) CellKey {
	lon := p.Lon
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(p.Lat / g.cellSize)),
	}
}

// Insert adds or moves the entry for id.
func (g *SpatialHashGrid[K, V]) Insert(id K, p geometry.Position, ts time.Time, data V) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellUnlocked(existing)
	}

	entry := &SpatialEntry[K, V]{
		ID:        id,
		Position:  p,
		Timestamp: ts,
		Data:      data,
		cellKey:   g.cellKey(p),
	}
	g.cells[entry.cellKey] = append(g.cells[entry.cellKey], entry)
	g.entries[id] = entry
}

// Remove deletes the entry for id and reports whether it existed.
func (g *SpatialHashGrid[K, V]) Remove(id K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeFromCellUnlocked(entry)
	delete(g.entries, id)
	return true
}

// caller must hold the write lock
func (g *SpatialHashGrid[K, V]) removeFromCellUnlocked(entry *SpatialEntry[K, V]) {
	cell := g.cells[entry.cellKey]
	for i, e := range cell {
		if e.ID == entry.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, entry.cellKey)
	} else {
		g.cells[entry.cellKey] = cell
	}
}

// Get returns a copy of the entry for id.
func (g *SpatialHashGrid[K, V]) Get(id K) (SpatialEntry[K, V], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.entries[id]
	if !ok {
		return SpatialEntry[K, V]{}, false
	}
	return *entry, true
}

// QueryNearby returns copies of the entries within radiusMeters
// (haversine) of p whose timestamps fall in [from, to]. A zero bound is
// open.
func (g *SpatialHashGrid[K, V]) QueryNearby(p geometry.Position, radiusMeters float64, from, to time.Time) []SpatialEntry[K, V] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	radiusDeg := radiusMeters / metersPerDegree
	dy := int(math.Ceil(radiusDeg/g.cellSize)) + 1
	// Longitude degrees shrink with latitude.
	cosLat := math.Max(math.Cos(p.Lat*math.Pi/180), 0.01)
	dx := int(math.Ceil(radiusDeg/cosLat/g.cellSize)) + 1
	centre := g.cellKey(p)

	var results []SpatialEntry[K, V]
	for x := -dx; x <= dx; x++ {
		for y := -dy; y <= dy; y++ {
			for _, entry := range g.cells[CellKey{X: centre.X + x, Y: centre.Y + y}] {
				if !from.IsZero() && entry.Timestamp.Before(from) {
					continue
				}
				if !to.IsZero() && entry.Timestamp.After(to) {
					continue
				}
				if p.DistanceTo(entry.Position) <= radiusMeters {
					results = append(results, *entry)
				}
			}
		}
	}
	return results
}

// Size returns the number of entries.
func (g *SpatialHashGrid[K, V]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// NumCells returns the number of non-empty cells.
func (g *SpatialHashGrid[K, V]) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes all entries.
func (g *SpatialHashGrid[K, V]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[CellKey][]*SpatialEntry[K, V])
	g.entries = make(map[K]*SpatialEntry[K, V])
}

// CleanupBefore removes entries older than before and returns the count.
func (g *SpatialHashGrid[K, V]) CleanupBefore(before time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, entry := range g.entries {
		if entry.Timestamp.Before(before) {
			g.removeFromCellUnlocked(entry)
			delete(g.entries, id)
			removed++
		}
	}
	return removed
}
