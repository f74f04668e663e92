// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"context"
	"errors"

	"github.com/tomtom215/seawatch/internal/cache"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/metrics"
)

// CachedRepository fronts a Repository with an LRU. Absent cells are
// cached too, since most cells a vessel crosses have no statistics.
type CachedRepository struct {
	inner Repository
	lru   *cache.LRU[cellKey, *Histogram]
}

// NewCachedRepository wraps inner with an LRU of the given capacity.
func NewCachedRepository(inner Repository, capacity int) *CachedRepository {
	return &CachedRepository{
		inner: inner,
		lru:   cache.NewLRU[cellKey, *Histogram](capacity, 0),
	}
}

// Get serves from cache, falling back to the wrapped store. A nil cached
// value means ErrNotFound.
func (r *CachedRepository) Get(ctx context.Context, feature string, cell grid.CellID) (*Histogram, error) {
	key := cellKey{feature, cell}
	if h, ok := r.lru.Get(key); ok {
		metrics.RecordStatisticsCache(true)
		if h == nil {
			return nil, ErrNotFound
		}
		return h, nil
	}
	metrics.RecordStatisticsCache(false)

	h, err := r.inner.Get(ctx, feature, cell)
	switch {
	case errors.Is(err, ErrNotFound):
		r.lru.Add(key, nil)
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	r.lru.Add(key, h)
	return h, nil
}

// Put writes through and refreshes the cached entry.
func (r *CachedRepository) Put(ctx context.Context, feature string, cell grid.CellID, h *Histogram) error {
	if err := r.inner.Put(ctx, feature, cell, h); err != nil {
		return err
	}
	r.lru.Add(cellKey{feature, cell}, h)
	return nil
}

// Metadata is not cached.
func (r *CachedRepository) Metadata(ctx context.Context) (Metadata, error) {
	return r.inner.Metadata(ctx)
}

// CacheStats returns the LRU counters.
func (r *CachedRepository) CacheStats() cache.Stats {
	return r.lru.Stats()
}
