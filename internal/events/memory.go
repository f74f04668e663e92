// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package events

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

// MemoryRepository keeps events in process. Events are lost on restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*models.Event
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[uuid.UUID]*models.Event)}
}

func (r *MemoryRepository) Save(ctx context.Context, e *models.Event) error {
	c, err := clone(e)
	if err != nil {
		return fmt.Errorf("copy event: %w", err)
	}

	r.mu.Lock()
	r.events[e.ID] = c
	r.mu.Unlock()

	metrics.RecordEventPersisted(e.Class.String(), string(e.State))
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e)
}

func (r *MemoryRepository) FindOngoingByVessel(ctx context.Context, mmsi int, class models.EventClass) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Event
	for _, e := range r.events {
		if e.Class != class || !e.IsOngoing() || !e.Involves(mmsi) {
			continue
		}
		if found == nil || e.StartTime.After(found.StartTime) {
			found = e
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return clone(found)
}

func (r *MemoryRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*models.Event, error) {
	return r.find(func(e *models.Event) bool { return !e.StartTime.Before(since) }, limit)
}

func (r *MemoryRepository) Find(ctx context.Context, f Filter) ([]*models.Event, error) {
	return r.find(f.matches, f.limit())
}

// find returns matching events, newest start first.
func (r *MemoryRepository) find(match func(*models.Event) bool, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	r.mu.RLock()
	var matched []*models.Event
	for _, e := range r.events {
		if match(e) {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].StartTime.After(matched[j].StartTime)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*models.Event, 0, len(matched))
	for _, e := range matched {
		c, err := clone(e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Len returns the number of stored events.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
