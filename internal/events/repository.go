// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package events persists the abnormal behaviour events produced by the
// analyses.
package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/models"
)

// ErrNotFound is returned when no event matches.
var ErrNotFound = errors.New("event not found")

// DefaultLimit caps query results when no limit is given.
const DefaultLimit = 100

// Filter selects events active in a period. Zero fields match everything.
type Filter struct {
	// From and To bound the period. An event matches when any part of its
	// lifetime falls inside; ongoing events extend to now.
	From time.Time
	To   time.Time

	Class *models.EventClass
	State models.EventState

	// Vessel matches an involved vessel by MMSI, IMO, name or callsign.
	Vessel string

	Limit int
}

// Repository stores events. Save is an upsert keyed by event ID.
type Repository interface {
	Save(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindOngoingByVessel(ctx context.Context, mmsi int, class models.EventClass) (*models.Event, error)
	FindRecent(ctx context.Context, since time.Time, limit int) ([]*models.Event, error)
	Find(ctx context.Context, f Filter) ([]*models.Event, error)
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// matches applies the filter in memory.
func (f Filter) matches(e *models.Event) bool {
	if f.Class != nil && e.Class != *f.Class {
		return false
	}
	if f.State != "" && e.State != f.State {
		return false
	}
	if !f.To.IsZero() && e.StartTime.After(f.To) {
		return false
	}
	if !f.From.IsZero() && e.EndTime != nil && e.EndTime.Before(f.From) {
		return false
	}
	if f.Vessel != "" && !involvesVessel(e, f.Vessel) {
		return false
	}
	return true
}

func involvesVessel(e *models.Event, q string) bool {
	q = strings.TrimSpace(q)
	for _, b := range e.Behaviours {
		v := b.Vessel
		if strconv.Itoa(v.MMSI) == q ||
			(v.IMO != 0 && strconv.Itoa(v.IMO) == q) ||
			(v.Name != "" && strings.EqualFold(v.Name, q)) ||
			(v.Callsign != "" && strings.EqualFold(v.Callsign, q)) {
			return true
		}
	}
	return false
}

// clone deep-copies an event so stored state cannot be mutated through
// returned pointers.
func clone(e *models.Event) (*models.Event, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var out models.Event
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
