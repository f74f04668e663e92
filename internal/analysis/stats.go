// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Common statistic names.
const (
	StatEventsReceived        = "Events received"
	StatAnalysesPerformed     = "Analyses performed"
	StatEventsRaised          = "Events raised"
	StatUnknownCell           = "Unknown cell"
	StatUnknownShipType       = "Unknown ship type"
	StatUnknownShipLength     = "Unknown ship length"
	StatUnknownCourse         = "Unknown course over ground"
	StatUnknownSpeed          = "Unknown speed over ground"
	StatUnknownDimensions     = "Unknown ship dimensions"
	StatStatisticsUnavailable = "Statistics unavailable"
	StatObservationList       = "# observation list"
)

// StatShorterThan names the counter of vessels skipped for being shorter
// than loa metres.
func StatShorterThan(loa int) string {
	return fmt.Sprintf("LOA < %d", loa)
}

// Stats holds named counters per analysis. It is safe for concurrent use.
type Stats struct {
	mu       sync.RWMutex
	counters map[string]map[string]*atomic.Int64
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{counters: make(map[string]map[string]*atomic.Int64)}
}

func (s *Stats) counter(analysis, stat string) *atomic.Int64 {
	s.mu.RLock()
	c, ok := s.counters[analysis][stat]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.counters[analysis]
	if !ok {
		stats = make(map[string]*atomic.Int64)
		s.counters[analysis] = stats
	}
	if c, ok = stats[stat]; !ok {
		c = new(atomic.Int64)
		stats[stat] = c
	}
	return c
}

// Inc adds one to a counter.
func (s *Stats) Inc(analysis, stat string) {
	s.counter(analysis, stat).Add(1)
}

// Set overwrites a counter.
func (s *Stats) Set(analysis, stat string, v int64) {
	s.counter(analysis, stat).Store(v)
}

// Get returns a counter value, zero when it was never touched.
func (s *Stats) Get(analysis, stat string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.counters[analysis][stat]; ok {
		return c.Load()
	}
	return 0
}

// Snapshot copies every counter.
func (s *Stats) Snapshot() map[string]map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]int64, len(s.counters))
	for analysis, stats := range s.counters {
		m := make(map[string]int64, len(stats))
		for name, c := range stats {
			m[name] = c.Load()
		}
		out[analysis] = m
	}
	return out
}

// Analyses returns the names of analyses with counters, sorted.
func (s *Stats) Analyses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.counters))
	for name := range s.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
