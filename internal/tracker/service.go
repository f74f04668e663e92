// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/eventbus"
	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
)

// Valid MMSI range.
const (
	MinMMSI = 1
	MaxMMSI = 999999999
)

// Config holds tracking service settings.
type Config struct {
	// Workers is the bus dispatch pool size. Zero dispatches synchronously
	// on the ingestion goroutine. Events of one track always go to the
	// same worker.
	Workers int `koanf:"workers" validate:"gte=0"`

	// QueueSize bounds pending bus deliveries when Workers > 0.
	QueueSize int `koanf:"queue_size" validate:"gte=0"`

	// Blacklist lists MMSIs whose reports are ignored.
	Blacklist []int `koanf:"blacklist"`

	// StaleAge is the silence after which a track is dropped.
	StaleAge time.Duration `koanf:"stale_age" validate:"gt=0"`

	// InterpolationThreshold is the position report gap that triggers
	// interpolation. Zero disables interpolation.
	InterpolationThreshold time.Duration `koanf:"interpolation_threshold" validate:"gte=0"`

	// InterpolationStep is the spacing of interpolated reports.
	InterpolationStep time.Duration `koanf:"interpolation_step" validate:"gt=0"`

	// TimeEventPeriod is the stream time between TimeEvents.
	TimeEventPeriod time.Duration `koanf:"time_event_period" validate:"gt=0"`

	// HistoryWindow is how far back from the newest report history is kept.
	HistoryWindow time.Duration `koanf:"history_window" validate:"gt=0"`

	// SweepInterval is the wall-clock period of the stale track sweeper.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

// DefaultConfig returns the standard tracking settings.
func DefaultConfig() Config {
	return Config{
		StaleAge:               30 * time.Minute,
		InterpolationThreshold: 30 * time.Second,
		InterpolationStep:      10 * time.Second,
		TimeEventPeriod:        time.Minute,
		HistoryWindow:          DefaultHistoryWindow,
		SweepInterval:          time.Minute,
	}
}

// Service maintains the track table and publishes track events.
type Service struct {
	cfg  Config
	grid *grid.Grid

	mu     sync.RWMutex
	tracks map[int]*Track

	// updateMu serialises Update and SweepStale so a sweep never drops a
	// track while a report is being applied to it.
	updateMu sync.Mutex

	blacklist map[int]struct{}

	positions *eventbus.Bus[PositionChangedEvent]
	cells     *eventbus.Bus[CellChangedEvent]
	stale     *eventbus.Bus[TrackStaleEvent]
	ticks     *eventbus.Bus[TimeEvent]

	timeMu        sync.Mutex
	streamTime    time.Time
	lastTimeEvent time.Time

	updates       atomic.Int64
	outOfSequence atomic.Int64
	blacklisted   atomic.Int64
	cellChanges   atomic.Int64

	warnLimiter *rate.Limiter
}

// NewService creates a tracking service on g.
func NewService(cfg Config, g *grid.Grid) *Service {
	def := DefaultConfig()
	if cfg.StaleAge <= 0 {
		cfg.StaleAge = def.StaleAge
	}
	if cfg.InterpolationStep <= 0 {
		cfg.InterpolationStep = def.InterpolationStep
	}
	if cfg.TimeEventPeriod <= 0 {
		cfg.TimeEventPeriod = def.TimeEventPeriod
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}

	s := &Service{
		cfg:         cfg,
		grid:        g,
		tracks:      make(map[int]*Track, 256),
		blacklist:   make(map[int]struct{}, len(cfg.Blacklist)),
		warnLimiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}

	for _, mmsi := range cfg.Blacklist {
		if mmsi < MinMMSI || mmsi > MaxMMSI {
			logging.Warn().Int("mmsi", mmsi).Msg("blacklisted MMSI out of range, ignoring")
			continue
		}
		s.blacklist[mmsi] = struct{}{}
	}
	if len(s.blacklist) > 0 {
		logging.Info().Int("count", len(s.blacklist)).Ints("mmsi", cfg.Blacklist).Msg("MMSI blacklist loaded")
	}

	busCfg := func(name string) eventbus.Config {
		return eventbus.Config{Name: name, Workers: cfg.Workers, QueueSize: cfg.QueueSize}
	}
	// Track events are sharded by MMSI so one vessel's events are handled
	// in order, one at a time.
	s.positions = eventbus.NewKeyed(busCfg("position_changed"), func(e PositionChangedEvent) uint64 { return uint64(e.Track.MMSI()) })
	s.cells = eventbus.NewKeyed(busCfg("cell_changed"), func(e CellChangedEvent) uint64 { return uint64(e.Track.MMSI()) })
	s.stale = eventbus.NewKeyed(busCfg("track_stale"), func(e TrackStaleEvent) uint64 { return uint64(e.Track.MMSI()) })
	s.ticks = eventbus.New[TimeEvent](busCfg("time"))
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Grid returns the grid used for cell ids.
func (s *Service) Grid() *grid.Grid {
	return s.grid
}

// OnPositionChanged subscribes h to position changes.
func (s *Service) OnPositionChanged(h func(PositionChangedEvent)) {
	s.positions.Subscribe(h)
}

// OnCellChanged subscribes h to cell transitions.
func (s *Service) OnCellChanged(h func(CellChangedEvent)) {
	s.cells.Subscribe(h)
}

// OnTrackStale subscribes h to stale tracks.
func (s *Service) OnTrackStale(h func(TrackStaleEvent)) {
	s.stale.Subscribe(h)
}

// OnTime subscribes h to stream time marks.
func (s *Service) OnTime(h func(TimeEvent)) {
	s.ticks.Subscribe(h)
}

// Drain waits until all queued events have been delivered.
func (s *Service) Drain() {
	s.positions.Drain()
	s.cells.Drain()
	s.stale.Drain()
	s.ticks.Drain()
}

// Close drains and stops the event buses.
func (s *Service) Close() {
	s.positions.Close()
	s.cells.Close()
	s.stale.Close()
	s.ticks.Close()
}

// IsBlacklisted reports whether reports for mmsi are ignored.
func (s *Service) IsBlacklisted(mmsi int) bool {
	_, ok := s.blacklist[mmsi]
	return ok
}

// Update applies one report for mmsi received at ts. It returns false when
// the report was dropped.
func (s *Service) Update(ts time.Time, mmsi int, r Report) bool {
	defer s.mark(ts)

	if mmsi < MinMMSI || mmsi > MaxMMSI {
		metrics.RecordMessageDropped("invalid_mmsi")
		return false
	}
	if s.IsBlacklisted(mmsi) {
		s.blacklisted.Add(1)
		metrics.RecordMessageDropped("blacklist")
		return false
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	track := s.getOrCreate(mmsi, ts)

	last := track.LastUpdate()
	if !last.IsZero() && ts.Sub(last) >= s.cfg.StaleAge {
		s.remove(mmsi)
		track = s.getOrCreate(mmsi, ts)
	}

	if !track.accept(ts) {
		n := s.outOfSequence.Add(1)
		metrics.RecordMessageDropped("out_of_sequence")
		if s.warnLimiter.Allow() {
			logging.Warn().
				Int("mmsi", mmsi).
				Time("timestamp", ts).
				Time("last_update", track.LastUpdate()).
				Int64("total", n).
				Msg("dropping out of sequence report")
		}
		return false
	}
	s.updates.Add(1)

	if r.IsStatic() || !r.IsPosition() {
		track.applyStatic(ts, r)
	}
	if !r.IsPosition() {
		return true
	}

	if !r.Position.IsValid() {
		prevCell, hadCell := track.clearCell(ts)
		if hadCell {
			s.publishCellChanged(track, &prevCell)
		}
		return true
	}

	if s.interpolationRequired(track, ts) {
		s.interpolate(track, ts, *r.Position)
	}
	s.applyPosition(track, newTrackingReport(ts, r))
	return true
}

func (s *Service) interpolationRequired(track *Track, ts time.Time) bool {
	if s.cfg.InterpolationThreshold <= 0 {
		return false
	}
	lastPos := track.LastPositionUpdate()
	return !lastPos.IsZero() && ts.Sub(lastPos) >= s.cfg.InterpolationThreshold
}

// interpolate fills the gap up to, not including, t2 with linearly
// interpolated positions that keep the previous kinematics.
func (s *Service) interpolate(track *Track, t2 time.Time, p2 geometry.Position) {
	prev, ok := track.NewestReport()
	if !ok || t2.Before(prev.Timestamp) {
		return
	}
	t1, p1 := prev.Timestamp, prev.Position
	span := float64(t2.Sub(t1))

	steps := 0
	for t := t1.Add(s.cfg.InterpolationStep); t.Before(t2); t = t.Add(s.cfg.InterpolationStep) {
		f := float64(t.Sub(t1)) / span
		s.applyPosition(track, TrackingReport{
			Timestamp:    t,
			Position:     geometry.NewPosition(p1.Lat+(p2.Lat-p1.Lat)*f, p1.Lon+(p2.Lon-p1.Lon)*f),
			SOG:          prev.SOG,
			COG:          prev.COG,
			Heading:      prev.Heading,
			Interpolated: true,
		})
		steps++
	}
	if steps > 0 {
		logging.Debug().Int("mmsi", track.MMSI()).Int("points", steps).Msg("interpolated track")
	}
}

func (s *Service) applyPosition(track *Track, tr TrackingReport) {
	cell := s.grid.CellOf(tr.Position.Lat, tr.Position.Lon)
	prev, hadPrev, prevCell, hadCell := track.applyPosition(tr, cell)

	if !hadPrev || prev.Position != tr.Position {
		var previous *geometry.Position
		if hadPrev {
			p := prev.Position
			previous = &p
		}
		s.positions.Publish(PositionChangedEvent{Track: track, Previous: previous})
	}

	switch {
	case !hadCell:
		s.publishCellChanged(track, nil)
	case prevCell != cell:
		pc := prevCell
		s.publishCellChanged(track, &pc)
	}
}

func (s *Service) publishCellChanged(track *Track, prev *grid.CellID) {
	s.cellChanges.Add(1)
	metrics.RecordCellTransition()
	s.cells.Publish(CellChangedEvent{Track: track, PreviousCell: prev})
}

// mark advances stream time and publishes a TimeEvent once per period.
func (s *Service) mark(ts time.Time) {
	s.timeMu.Lock()
	if ts.After(s.streamTime) {
		s.streamTime = ts
	}
	var ev *TimeEvent
	if s.lastTimeEvent.IsZero() {
		ev = &TimeEvent{Timestamp: ts, SinceLast: -1}
	} else if since := ts.Sub(s.lastTimeEvent); since >= s.cfg.TimeEventPeriod {
		ev = &TimeEvent{Timestamp: ts, SinceLast: since}
	}
	if ev != nil {
		s.lastTimeEvent = ts
	}
	s.timeMu.Unlock()

	if ev != nil {
		s.ticks.Publish(*ev)
	}
}

// StreamTime returns the newest timestamp seen on the input stream.
func (s *Service) StreamTime() time.Time {
	s.timeMu.Lock()
	defer s.timeMu.Unlock()
	return s.streamTime
}

// SweepStale drops every track silent for StaleAge or more at now and
// returns how many were dropped.
func (s *Service) SweepStale(now time.Time) int {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	var stale []int
	s.mu.RLock()
	for mmsi, t := range s.tracks {
		if now.Sub(t.LastUpdate()) >= s.cfg.StaleAge {
			stale = append(stale, mmsi)
		}
	}
	s.mu.RUnlock()

	for _, mmsi := range stale {
		s.remove(mmsi)
	}
	if len(stale) > 0 {
		logging.Debug().Int("tracks", len(stale)).Time("stream_time", now).Msg("swept stale tracks")
	}
	return len(stale)
}

func (s *Service) getOrCreate(mmsi int, ts time.Time) *Track {
	s.mu.RLock()
	t, ok := s.tracks[mmsi]
	s.mu.RUnlock()
	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok = s.tracks[mmsi]; ok {
		return t
	}
	t = NewTrack(mmsi, ts)
	t.window = s.cfg.HistoryWindow
	s.tracks[mmsi] = t
	metrics.SetActiveTracks(len(s.tracks))
	return t
}

func (s *Service) remove(mmsi int) {
	s.mu.Lock()
	t, ok := s.tracks[mmsi]
	if ok {
		delete(s.tracks, mmsi)
		metrics.SetActiveTracks(len(s.tracks))
	}
	s.mu.Unlock()

	if ok {
		metrics.RecordTrackStale()
		s.stale.Publish(TrackStaleEvent{Track: t})
	}
}

// Track returns the live track of mmsi.
func (s *Service) Track(mmsi int) (*Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[mmsi]
	return t, ok
}

// Tracks returns the live tracks ordered by MMSI.
func (s *Service) Tracks() []*Track {
	s.mu.RLock()
	out := make([]*Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].MMSI() < out[j].MMSI() })
	return out
}

// CloneTracks returns deep copies of all tracks ordered by MMSI.
func (s *Service) CloneTracks() []*Track {
	live := s.Tracks()
	out := make([]*Track, len(live))
	for i, t := range live {
		out[i] = t.Clone()
	}
	return out
}

// NumTracks returns the number of live tracks.
func (s *Service) NumTracks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Stats is a snapshot of the service counters.
type Stats struct {
	Tracks        int   `json:"tracks"`
	Updates       int64 `json:"updates"`
	OutOfSequence int64 `json:"out_of_sequence"`
	Blacklisted   int64 `json:"blacklisted"`
	CellChanges   int64 `json:"cell_changes"`
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return Stats{
		Tracks:        s.NumTracks(),
		Updates:       s.updates.Load(),
		OutOfSequence: s.outOfSequence.Load(),
		Blacklisted:   s.blacklisted.Load(),
		CellChanges:   s.cellChanges.Load(),
	}
}
