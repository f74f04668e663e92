// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"path"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/logging"
)

// FilterConfig configures the filter chain.
type FilterConfig struct {
	// Location drops position reports outside the box. A zero box passes
	// everything.
	Location geometry.BoundingBox `koanf:"location"`

	// ShipNameSkip lists case-insensitive glob patterns, e.g. "PILOT*".
	// Messages of vessels whose name matches are dropped.
	ShipNameSkip []string `koanf:"shipname_skip"`

	// Downsampling drops a vessel's message when one of the same kind was
	// accepted less than this long before. Zero disables downsampling.
	Downsampling time.Duration `koanf:"downsampling" validate:"gte=0"`
}

// Filter decides whether a message is dropped.
type Filter interface {
	// Name is used as the drop reason in metrics.
	Name() string
	Reject(m Message) bool
}

// Chain applies filters in order.
type Chain []Filter

// Reject returns the name of the first filter rejecting m.
func (c Chain) Reject(m Message) (string, bool) {
	for _, f := range c {
		if f.Reject(m) {
			return f.Name(), true
		}
	}
	return "", false
}

// NameLookup returns the last known name of a vessel, or "".
type NameLookup func(mmsi int) string

// NewChain builds the configured filters. Filters that are not configured
// are left out.
func NewChain(cfg FilterConfig, names NameLookup) Chain {
	var c Chain
	if !cfg.Location.IsZero() {
		c = append(c, &LocationFilter{Box: cfg.Location})
		logging.Info().Stringer("area", cfg.Location).Msg("location filter enabled")
	} else {
		logging.Warn().Msg("no location-based filtering of messages")
	}
	if len(cfg.ShipNameSkip) > 0 {
		c = append(c, NewShipNameFilter(cfg.ShipNameSkip, names))
		logging.Info().Strs("patterns", cfg.ShipNameSkip).Msg("ship name filter enabled")
	}
	if cfg.Downsampling > 0 {
		c = append(c, NewDownsampleFilter(cfg.Downsampling))
		logging.Info().Dur("period", cfg.Downsampling).Msg("downsampling enabled")
	}
	return c
}

// LocationFilter drops position reports outside Box, including reports
// whose position is not available. Static reports pass.
type LocationFilter struct {
	Box geometry.BoundingBox
}

func (f *LocationFilter) Name() string { return "location" }

func (f *LocationFilter) Reject(m Message) bool {
	if m.Kind != KindPosition {
		return false
	}
	pos, ok := m.Position()
	if !ok || !pos.IsValid() {
		return true
	}
	return !f.Box.Contains(pos)
}

// ShipNameFilter drops messages of vessels with a matching name. The name
// carried by a static message wins over the name known from the track.
type ShipNameFilter struct {
	patterns []string
	names    NameLookup
}

// NewShipNameFilter creates the filter. Blank patterns are ignored.
func NewShipNameFilter(patterns []string, names NameLookup) *ShipNameFilter {
	f := &ShipNameFilter{names: names}
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			f.patterns = append(f.patterns, strings.ToUpper(p))
		}
	}
	return f
}

func (f *ShipNameFilter) Name() string { return "shipname" }

func (f *ShipNameFilter) Reject(m Message) bool {
	name := m.Name
	if name == "" && f.names != nil {
		name = f.names(m.MMSI)
	}
	if name == "" {
		return false
	}
	name = strings.ToUpper(name)
	for _, p := range f.patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

type downsampleKey struct {
	mmsi int
	kind Kind
}

// DownsampleFilter thins out each vessel's messages to at most one per
// period and kind, measured in message time.
type DownsampleFilter struct {
	period time.Duration

	mu   sync.Mutex
	last map[downsampleKey]time.Time
}

// NewDownsampleFilter creates the filter.
func NewDownsampleFilter(period time.Duration) *DownsampleFilter {
	return &DownsampleFilter{period: period, last: make(map[downsampleKey]time.Time)}
}

func (f *DownsampleFilter) Name() string { return "downsample" }

func (f *DownsampleFilter) Reject(m Message) bool {
	key := downsampleKey{mmsi: m.MMSI, kind: m.Kind}

	f.mu.Lock()
	defer f.mu.Unlock()
	if last, ok := f.last[key]; ok && m.Timestamp.Sub(last) < f.period && !m.Timestamp.Before(last) {
		return true
	}
	f.last[key] = m.Timestamp
	return false
}

// Forget drops the state kept for mmsi.
func (f *DownsampleFilter) Forget(mmsi int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.last, downsampleKey{mmsi, KindPosition})
	delete(f.last, downsampleKey{mmsi, KindStatic})
}
