// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/seawatch/internal/grid"
)

// countingRepository counts calls to Get.
type countingRepository struct {
	*MemoryRepository
	gets int
	err  error
}

func (r *countingRepository) Get(ctx context.Context, feature string, cell grid.CellID) (*Histogram, error) {
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	return r.MemoryRepository.Get(ctx, feature, cell)
}

func TestCachedRepository_HitsAndNegatives(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepository{MemoryRepository: NewMemoryRepository(grid.DefaultResolution)}
	if err := inner.Put(ctx, FeatureSpeedOverGround, 1, NewHistogram(8, 6, 8)); err != nil {
		t.Fatal(err)
	}

	repo := NewCachedRepository(inner, 8)

	for i := 0; i < 3; i++ {
		if _, err := repo.Get(ctx, FeatureSpeedOverGround, 1); err != nil {
			t.Fatalf("Get(1) error = %v", err)
		}
		if _, err := repo.Get(ctx, FeatureSpeedOverGround, 2); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(2) error = %v, want ErrNotFound", err)
		}
	}

	if inner.gets != 2 {
		t.Errorf("inner Get called %d times, want 2", inner.gets)
	}
	stats := repo.CacheStats()
	if stats.Hits != 4 || stats.Misses != 2 {
		t.Errorf("CacheStats() = %+v, want 4 hits and 2 misses", stats)
	}
}

func TestCachedRepository_PutRefreshes(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepository{MemoryRepository: NewMemoryRepository(grid.DefaultResolution)}
	repo := NewCachedRepository(inner, 8)

	if _, err := repo.Get(ctx, FeatureShipTypeAndSize, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v", err)
	}

	h := NewHistogram(8, 6, 1)
	h.Add(0, 0, 0, 3)
	if err := repo.Put(ctx, FeatureShipTypeAndSize, 5, h); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, FeatureShipTypeAndSize, 5)
	if err != nil || got.Total() != 3 {
		t.Errorf("Get() after Put = %v, %v", got, err)
	}
	if inner.gets != 1 {
		t.Errorf("inner Get called %d times, want 1", inner.gets)
	}
}

func TestCachedRepository_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	inner := &countingRepository{MemoryRepository: NewMemoryRepository(grid.DefaultResolution), err: boom}
	repo := NewCachedRepository(inner, 8)

	for i := 0; i < 2; i++ {
		if _, err := repo.Get(ctx, FeatureCourseOverGround, 9); !errors.Is(err, boom) {
			t.Fatalf("Get() error = %v, want %v", err, boom)
		}
	}
	if inner.gets != 2 {
		t.Errorf("inner Get called %d times, want 2", inner.gets)
	}
}
