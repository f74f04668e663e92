// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/statistics"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// ErrUnknownAnalysis is returned for an analysis name that is not registered.
var ErrUnknownAnalysis = errors.New("unknown analysis")

// Engine owns the registered analyses.
type Engine struct {
	mu       sync.RWMutex
	analyses map[string]Analysis
	stats    *Stats
	attached bool
}

// Status is the externally visible state of one analysis.
type Status struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// NewEngine creates an engine with every built-in analysis registered.
// repo provides the trained statistics, speeds the speed buckets they were
// trained with.
func NewEngine(cfg Config, speeds categorizer.SpeedTable, repo statistics.Repository, sink FreeFlowSink, deps Deps) *Engine {
	if deps.Stats == nil {
		deps.Stats = NewStats()
	}
	if deps.StoreTimeout <= 0 {
		deps.StoreTimeout = cfg.StoreTimeout
	}

	e := &Engine{
		analyses: make(map[string]Analysis),
		stats:    deps.Stats,
	}
	e.Register(NewCourseOverGroundAnalysis(cfg.CourseOverGround, repo, deps))
	e.Register(NewSpeedOverGroundAnalysis(cfg.SpeedOverGround, speeds, repo, deps))
	e.Register(NewShipTypeAndSizeAnalysis(cfg.ShipTypeAndSize, repo, deps))
	e.Register(NewDriftAnalysis(cfg.Drift, deps))
	e.Register(NewSuddenSpeedChangeAnalysis(cfg.SuddenSpeedChange, deps))
	e.Register(NewCloseEncounterAnalysis(cfg.CloseEncounter, cfg.SafetyZone, deps))
	e.Register(NewFreeFlowAnalysis(cfg.FreeFlow, sink, deps))
	return e
}

// Register adds an analysis, replacing one with the same name. Analyses
// registered after Attach are not attached.
func (e *Engine) Register(a Analysis) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.analyses[a.Name()] = a
	logging.Info().Str("analysis", a.Name()).Bool("enabled", a.Enabled()).Msg("registered analysis")
}

// Attach subscribes every registered analysis to s. Disabled analyses are
// attached too so they can be enabled at runtime.
func (e *Engine) Attach(s *tracker.Service) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.attached {
		return
	}
	for _, name := range e.namesLocked() {
		e.analyses[name].Attach(s)
	}
	e.attached = true
}

// Analysis returns the analysis registered as name.
func (e *Engine) Analysis(name string) (Analysis, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.analyses[name]
	return a, ok
}

// Analyses returns the registered analyses ordered by name.
func (e *Engine) Analyses() []Analysis {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := e.namesLocked()
	out := make([]Analysis, 0, len(names))
	for _, name := range names {
		out = append(out, e.analyses[name])
	}
	return out
}

// SetEnabled enables or disables the analysis registered as name.
func (e *Engine) SetEnabled(name string, enabled bool) error {
	a, ok := e.Analysis(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAnalysis, name)
	}
	a.SetEnabled(enabled)
	return nil
}

// Status returns the state of every analysis ordered by name.
func (e *Engine) Status() []Status {
	analyses := e.Analyses()
	out := make([]Status, len(analyses))
	for i, a := range analyses {
		out[i] = Status{Name: a.Name(), Enabled: a.Enabled()}
	}
	return out
}

// Stats returns the counters shared by the analyses.
func (e *Engine) Stats() *Stats {
	return e.stats
}

func (e *Engine) namesLocked() []string {
	names := make([]string, 0, len(e.analyses))
	for name := range e.analyses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
