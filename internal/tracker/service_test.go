// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package tracker

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/seawatch/internal/grid"
)

// recorder collects published events.
type recorder struct {
	mu        sync.Mutex
	positions []PositionChangedEvent
	cells     []CellChangedEvent
	stale     []TrackStaleEvent
	ticks     []TimeEvent
}

func (r *recorder) attach(s *Service) {
	s.OnPositionChanged(func(e PositionChangedEvent) { r.mu.Lock(); r.positions = append(r.positions, e); r.mu.Unlock() })
	s.OnCellChanged(func(e CellChangedEvent) { r.mu.Lock(); r.cells = append(r.cells, e); r.mu.Unlock() })
	s.OnTrackStale(func(e TrackStaleEvent) { r.mu.Lock(); r.stale = append(r.stale, e); r.mu.Unlock() })
	s.OnTime(func(e TimeEvent) { r.mu.Lock(); r.ticks = append(r.ticks, e); r.mu.Unlock() })
}

func newTestService(t *testing.T, cfg Config, resolution float64) (*Service, *recorder) {
	t.Helper()
	g, err := grid.New(resolution)
	if err != nil {
		t.Fatalf("grid.New() error = %v", err)
	}
	s := NewService(cfg, g)
	t.Cleanup(s.Close)
	rec := &recorder{}
	rec.attach(s)
	return s, rec
}

func TestService_CellChangedOncePerCellEntered(t *testing.T) {
	const resolution = 0.001
	s, rec := newTestService(t, DefaultConfig(), resolution)

	const mmsi = 219000010
	s.Update(t0, mmsi, NewStaticReport(70, 100, 20, 5, 5, "NORTHBOUND", ""))

	// Start in the middle of a cell and step one cell north per report.
	lat0 := 56.0005
	cells := map[grid.CellID]bool{}
	for i := 0; i < 10; i++ {
		lat := lat0 + float64(i)*resolution
		cells[s.Grid().CellOf(lat, 12.0005)] = true
		s.Update(t0.Add(time.Duration(i+1)*10*time.Second), mmsi, NewPositionReport(lat, 12.0005, 12, 0, 0))
	}

	if len(cells) != 10 {
		t.Fatalf("test setup produced %d distinct cells, want 10", len(cells))
	}
	if got := len(rec.cells); got != len(cells) {
		t.Fatalf("cell changed events = %d, want %d", got, len(cells))
	}
	if rec.cells[0].PreviousCell != nil {
		t.Error("first cell event should have no previous cell")
	}
	transitions := 0
	for _, e := range rec.cells[1:] {
		if e.PreviousCell == nil {
			t.Error("transition without previous cell")
			continue
		}
		transitions++
	}
	if transitions != len(cells)-1 {
		t.Errorf("transitions = %d, want %d", transitions, len(cells)-1)
	}
}

func TestService_NoCellChangedInsideSameCell(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.001)

	const mmsi = 219000011
	for i := 0; i < 20; i++ {
		lat := 56.0001 + float64(i)*0.00001
		s.Update(t0.Add(time.Duration(i)*5*time.Second), mmsi, NewPositionReport(lat, 12.0005, 1, 0, 0))
	}

	if got := len(rec.cells); got != 1 {
		t.Errorf("cell changed events = %d, want 1 (initial cell only)", got)
	}
	if got := len(rec.positions); got != 20 {
		t.Errorf("position changed events = %d, want 20", got)
	}
}

func TestService_OutOfSequenceRejected(t *testing.T) {
	s, _ := newTestService(t, DefaultConfig(), 0.01)

	const mmsi = 219000012
	if !s.Update(t0.Add(10*time.Second), mmsi, NewPositionReport(56, 12, 10, 45, 45)) {
		t.Fatal("first report rejected")
	}
	if s.Update(t0, mmsi, NewPositionReport(57, 13, 1, 90, 90)) {
		t.Error("older report accepted")
	}

	track, _ := s.Track(mmsi)
	pos, _ := track.Position()
	if pos.Lat != 56 || pos.Lon != 12 {
		t.Errorf("current position changed to %v", pos)
	}
	if got := s.Stats().OutOfSequence; got != 1 {
		t.Errorf("OutOfSequence = %d, want 1", got)
	}

	// Equal timestamps are in sequence.
	if !s.Update(t0.Add(10*time.Second), mmsi, NewStaticReport(80, 100, 20, 5, 5, "", "")) {
		t.Error("report at the last update time rejected")
	}
}

func TestService_Interpolation(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.01)

	const mmsi = 219000013
	s.Update(t0, mmsi, NewPositionReport(56.0, 12.0, 8, 10, 12))
	s.Update(t0.Add(60*time.Second), mmsi, NewPositionReport(56.006, 12.0, 9, 20, 21))

	track, _ := s.Track(mmsi)
	reports := track.Reports()
	if len(reports) != 7 {
		t.Fatalf("len(Reports()) = %d, want 7", len(reports))
	}

	for i, r := range reports[1:6] {
		wantTs := t0.Add(time.Duration(i+1) * 10 * time.Second)
		if !r.Timestamp.Equal(wantTs) {
			t.Errorf("interpolated[%d] at %v, want %v", i, r.Timestamp, wantTs)
		}
		if !r.Interpolated {
			t.Errorf("interpolated[%d] not flagged", i)
		}
		wantLat := 56.0 + 0.001*float64(i+1)
		if math.Abs(r.Position.Lat-wantLat) > 1e-9 {
			t.Errorf("interpolated[%d] lat = %v, want %v", i, r.Position.Lat, wantLat)
		}
		if r.SOG != 8 || r.COG != 10 {
			t.Errorf("interpolated[%d] kinematics = %v/%v, want previous 8/10", i, r.SOG, r.COG)
		}
	}
	last := reports[6]
	if last.Interpolated || last.SOG != 9 || last.COG != 20 {
		t.Errorf("final report = %+v", last)
	}

	if got := len(rec.positions); got != 7 {
		t.Errorf("position changed events = %d, want 7", got)
	}
}

func TestService_NoInterpolationBelowThreshold(t *testing.T) {
	s, _ := newTestService(t, DefaultConfig(), 0.01)

	const mmsi = 219000014
	s.Update(t0, mmsi, NewPositionReport(56.0, 12.0, 8, 10, 12))
	s.Update(t0.Add(29*time.Second), mmsi, NewPositionReport(56.001, 12.0, 8, 10, 12))

	track, _ := s.Track(mmsi)
	if got := len(track.Reports()); got != 2 {
		t.Errorf("len(Reports()) = %d, want 2", got)
	}
}

func TestService_StaleRebirth(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.01)

	const mmsi = 219000015
	s.Update(t0, mmsi, NewPositionReport(56.0, 12.0, 8, 10, 12))
	old, _ := s.Track(mmsi)

	later := t0.Add(31 * time.Minute)
	s.Update(later, mmsi, NewPositionReport(56.1, 12.1, 8, 10, 12))

	if len(rec.stale) != 1 || rec.stale[0].Track != old {
		t.Fatalf("stale events = %d, want 1 for the old track", len(rec.stale))
	}
	reborn, _ := s.Track(mmsi)
	if reborn == old {
		t.Fatal("track was not recreated")
	}
	if !reborn.Created().Equal(later) {
		t.Errorf("Created() = %v, want %v", reborn.Created(), later)
	}
	if got := len(reborn.Reports()); got != 1 {
		t.Errorf("reborn track has %d reports, want 1 (no interpolation across rebirth)", got)
	}
}

func TestService_SweepStale(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.01)

	s.Update(t0, 219000016, NewPositionReport(56.0, 12.0, 8, 10, 12))
	s.Update(t0.Add(20*time.Minute), 219000017, NewPositionReport(56.0, 12.0, 8, 10, 12))

	if n := s.SweepStale(t0.Add(35 * time.Minute)); n != 1 {
		t.Errorf("SweepStale() = %d, want 1", n)
	}
	if _, ok := s.Track(219000016); ok {
		t.Error("stale track still present")
	}
	if _, ok := s.Track(219000017); !ok {
		t.Error("fresh track removed")
	}
	if len(rec.stale) != 1 {
		t.Errorf("stale events = %d, want 1", len(rec.stale))
	}
}

func TestService_SweepWaitsForUpdateInProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InterpolationThreshold = 0
	s, _ := newTestService(t, cfg, 0.01)
	const mmsi = 219000020

	s.Update(t0, mmsi, NewPositionReport(56.0, 12.0, 8, 10, 12))

	// Stale relative to the first report, fresh relative to the second.
	sweepAt := t0.Add(cfg.StaleAge)
	swept := make(chan int, 1)
	var blocked bool
	var once sync.Once
	s.OnPositionChanged(func(e PositionChangedEvent) {
		if e.Previous == nil {
			return
		}
		once.Do(func() {
			go func() { swept <- s.SweepStale(sweepAt) }()
			select {
			case n := <-swept:
				swept <- n
			case <-time.After(50 * time.Millisecond):
				blocked = true
			}
		})
	})

	before, _ := s.Track(mmsi)
	s.Update(t0.Add(10*time.Minute), mmsi, NewPositionReport(56.1, 12.0, 8, 10, 12))

	if !blocked {
		t.Fatal("sweep ran while a report was being applied")
	}
	if n := <-swept; n != 0 {
		t.Errorf("SweepStale() = %d, want 0", n)
	}
	after, ok := s.Track(mmsi)
	if !ok || after != before {
		t.Fatal("updated track was swept")
	}
	if r, _ := after.NewestReport(); !r.Timestamp.Equal(t0.Add(10 * time.Minute)) {
		t.Errorf("newest report at %v, want the second report", r.Timestamp)
	}
}

func TestService_Blacklist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blacklist = []int{219000018, -1, 1000000000}
	s, rec := newTestService(t, cfg, 0.01)

	tests := []struct {
		name string
		mmsi int
		want bool
	}{
		{"blacklisted", 219000018, false},
		{"zero", 0, false},
		{"too large", 1000000000, false},
		{"tracked", 219000019, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Update(t0, tt.mmsi, NewPositionReport(56, 12, 1, 1, 1)); got != tt.want {
				t.Errorf("Update(%d) = %v, want %v", tt.mmsi, got, tt.want)
			}
		})
	}

	if s.NumTracks() != 1 {
		t.Errorf("NumTracks() = %d, want 1", s.NumTracks())
	}
	if len(rec.positions) != 1 {
		t.Errorf("position events = %d, want 1", len(rec.positions))
	}
}

func TestService_InvalidPositionLeavesCell(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.01)

	const mmsi = 219000020
	s.Update(t0, mmsi, NewPositionReport(56, 12, 1, 1, 1))
	s.Update(t0.Add(time.Second), mmsi, NewPositionReport(91, 181, 1, 1, 1))
	s.Update(t0.Add(2*time.Second), mmsi, NewPositionReport(91, 181, 1, 1, 1))

	if len(rec.cells) != 2 {
		t.Fatalf("cell events = %d, want 2", len(rec.cells))
	}
	if rec.cells[1].PreviousCell == nil {
		t.Error("losing a position should carry the previous cell")
	}
	track, _ := s.Track(mmsi)
	if _, ok := track.CellID(); ok {
		t.Error("track should have no cell after an invalid position")
	}
	if got := len(track.Reports()); got != 1 {
		t.Errorf("invalid positions were stored: %d reports", got)
	}
}

func TestService_TimeEvents(t *testing.T) {
	s, rec := newTestService(t, DefaultConfig(), 0.01)

	for i := 0; i <= 9; i++ {
		s.Update(t0.Add(time.Duration(i)*20*time.Second), 219000021, NewPositionReport(56, 12, 1, 1, 1))
	}

	// Stream time 0..180s: marks at 0, 60, 120 and 180 seconds.
	if len(rec.ticks) != 4 {
		t.Fatalf("time events = %d, want 4", len(rec.ticks))
	}
	if rec.ticks[0].SinceLast >= 0 {
		t.Errorf("first time event SinceLast = %v, want negative", rec.ticks[0].SinceLast)
	}
	if rec.ticks[1].SinceLast != time.Minute {
		t.Errorf("second time event SinceLast = %v, want 1m", rec.ticks[1].SinceLast)
	}
	if !s.StreamTime().Equal(t0.Add(180 * time.Second)) {
		t.Errorf("StreamTime() = %v", s.StreamTime())
	}
}

func TestService_WorkerPoolDelivery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 4
	s, rec := newTestService(t, cfg, 0.001)

	for m := 0; m < 5; m++ {
		for i := 0; i < 10; i++ {
			lat := 56.0005 + float64(i)*0.001
			s.Update(t0.Add(time.Duration(i)*10*time.Second), 219000100+m, NewPositionReport(lat, 12.0005, 12, 0, 0))
		}
	}
	s.Drain()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.positions) != 50 {
		t.Errorf("position events = %d, want 50", len(rec.positions))
	}
	if len(rec.cells) != 50 {
		t.Errorf("cell events = %d, want 50", len(rec.cells))
	}
}
