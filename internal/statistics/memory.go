// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"context"
	"sync"

	"github.com/tomtom215/seawatch/internal/grid"
)

type cellKey struct {
	feature string
	cell    grid.CellID
}

// MemoryRepository keeps histograms in a map. Used by tests and replays.
type MemoryRepository struct {
	mu    sync.RWMutex
	stats map[cellKey]*Histogram
	md    Metadata
}

// NewMemoryRepository creates an empty store for the grid resolution.
func NewMemoryRepository(resolution float64) *MemoryRepository {
	return &MemoryRepository{
		stats: make(map[cellKey]*Histogram),
		md:    Metadata{GridResolution: resolution, FormatVersion: FormatVersion},
	}
}

func (r *MemoryRepository) Get(ctx context.Context, feature string, cell grid.CellID) (*Histogram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.stats[cellKey{feature, cell}]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (r *MemoryRepository) Put(ctx context.Context, feature string, cell grid.CellID, h *Histogram) error {
	if err := h.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.md.recordShape(feature, h); err != nil {
		return err
	}
	r.stats[cellKey{feature, cell}] = h
	if !r.md.HasFeature(feature) {
		r.md.Features = append(r.md.Features, feature)
	}
	return nil
}

func (r *MemoryRepository) Metadata(ctx context.Context) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md := r.md
	md.Features = append([]string(nil), r.md.Features...)
	md.SpeedBounds = append([]float64(nil), r.md.SpeedBounds...)
	return md, nil
}

// SetMetadata overwrites the metadata.
func (r *MemoryRepository) SetMetadata(ctx context.Context, md Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	md.Features = append([]string(nil), md.Features...)
	md.SpeedBounds = append([]float64(nil), md.SpeedBounds...)
	r.md = md
	return nil
}
