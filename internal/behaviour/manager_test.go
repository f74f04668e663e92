// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package behaviour

import (
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

func newTrack(t *testing.T, mmsi int) *tracker.Track {
	t.Helper()
	g, err := grid.New(grid.DefaultResolution)
	if err != nil {
		t.Fatal(err)
	}
	svc := tracker.NewService(tracker.DefaultConfig(), g)
	t.Cleanup(svc.Close)
	svc.Update(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC), mmsi, tracker.NewPositionReport(56, 12, 10, 90, 90))
	track, ok := svc.Track(mmsi)
	if !ok {
		t.Fatal("track not created")
	}
	return track
}

type verdict bool

const (
	abnormal verdict = true
	normal   verdict = false
)

func feed(m *Manager, class models.EventClass, track *tracker.Track, verdicts ...verdict) {
	for _, v := range verdicts {
		if v == abnormal {
			m.AbnormalBehaviourDetected(class, track, nil)
		} else {
			m.NormalBehaviourDetected(class, track)
		}
	}
}

func kinds(ns []Notification) []Kind {
	out := make([]Kind, len(ns))
	for i, n := range ns {
		out[i] = n.Kind
	}
	return out
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestManager_Sequences(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []verdict
		want     []Kind
	}{
		{
			name:     "single abnormal does not raise",
			verdicts: []verdict{abnormal},
			want:     []Kind{},
		},
		{
			name:     "two abnormal raise once",
			verdicts: []verdict{abnormal, abnormal},
			want:     []Kind{KindRaise},
		},
		{
			name:     "third abnormal maintains",
			verdicts: []verdict{abnormal, abnormal, abnormal},
			want:     []Kind{KindRaise, KindMaintain},
		},
		{
			name:     "three normal after raise lower on the third",
			verdicts: []verdict{abnormal, abnormal, normal, normal, normal},
			want:     []Kind{KindRaise, KindMaintain, KindMaintain, KindLower},
		},
		{
			name:     "abnormal resets the lower score",
			verdicts: []verdict{abnormal, abnormal, normal, normal, abnormal, normal, normal, normal},
			want:     []Kind{KindRaise, KindMaintain, KindMaintain, KindMaintain, KindMaintain, KindMaintain, KindLower},
		},
		{
			name:     "normal resets the raise score",
			verdicts: []verdict{abnormal, normal, abnormal, normal},
			want:     []Kind{},
		},
		{
			name:     "normal on inactive is silent",
			verdicts: []verdict{normal, normal, normal},
			want:     []Kind{},
		},
		{
			name:     "raise again after lower",
			verdicts: []verdict{abnormal, abnormal, normal, normal, normal, abnormal, abnormal},
			want:     []Kind{KindRaise, KindMaintain, KindMaintain, KindLower, KindRaise},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(DefaultConfig(), nil)
			var got []Notification
			m.Subscribe(func(n Notification) { got = append(got, n) })

			track := newTrack(t, 219000001)
			feed(m, models.EventClassCourseOverGround, track, tt.verdicts...)

			if !equalKinds(kinds(got), tt.want) {
				t.Errorf("notifications = %v, want %v", kinds(got), tt.want)
			}
			for _, n := range got {
				if n.Class != models.EventClassCourseOverGround || n.Track != track {
					t.Errorf("notification carries class %v track %p", n.Class, n.Track)
				}
			}
		})
	}
}

func TestManager_ClassesAreIndependent(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	var got []Notification
	m.Subscribe(func(n Notification) { got = append(got, n) })

	track := newTrack(t, 219000002)
	m.AbnormalBehaviourDetected(models.EventClassSpeedOverGround, track, nil)
	m.AbnormalBehaviourDetected(models.EventClassCourseOverGround, track, nil)

	if len(got) != 0 {
		t.Fatalf("one abnormal verdict per class raised %d events", len(got))
	}

	m.AbnormalBehaviourDetected(models.EventClassSpeedOverGround, track, nil)
	if len(got) != 1 || got[0].Class != models.EventClassSpeedOverGround {
		t.Fatalf("notifications = %+v", got)
	}
	if track.Behaviour(models.EventClassCourseOverGround).Active {
		t.Error("course over ground should not be active")
	}
}

func TestManager_StaleClearsWithoutNotification(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	var got []Notification
	m.Subscribe(func(n Notification) { got = append(got, n) })

	track := newTrack(t, 219000003)
	feed(m, models.EventClassDrift, track, abnormal, abnormal)
	m.TrackStaleDetected(models.EventClassDrift, track)
	feed(m, models.EventClassDrift, track, normal, normal, normal)

	if !equalKinds(kinds(got), []Kind{KindRaise}) {
		t.Errorf("notifications = %v, want [raise]", kinds(got))
	}
	if state := track.Behaviour(models.EventClassDrift); state != (tracker.BehaviourState{}) {
		t.Errorf("state after stale = %+v", state)
	}
}

func TestManager_Certainty(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	track := newTrack(t, 219000004)
	class := models.EventClassShipSizeOrType

	steps := []struct {
		verdict verdict
		want    models.EventCertainty
	}{
		{abnormal, models.EventCertaintyUncertain},
		{abnormal, models.EventCertaintyRaised},
		{normal, models.EventCertaintyUncertain},
		{abnormal, models.EventCertaintyRaised},
		{normal, models.EventCertaintyUncertain},
		{normal, models.EventCertaintyUncertain},
		{normal, models.EventCertaintyLowered},
	}

	if got := Certainty(class, track); got != models.EventCertaintyLowered {
		t.Fatalf("fresh certainty = %v, want LOWERED", got)
	}
	for i, step := range steps {
		feed(m, class, track, step.verdict)
		if got := Certainty(class, track); got != step.want {
			t.Errorf("step %d: Certainty() = %v, want %v", i, got, step.want)
		}
		if got := CertaintyAtCurrentPosition(class, track); got != step.want {
			t.Errorf("step %d: CertaintyAtCurrentPosition() = %v, want %v", i, got, step.want)
		}
	}

	// Queries have no side effects.
	before := track.Behaviour(class)
	_ = Certainty(class, track)
	if track.Behaviour(class) != before {
		t.Error("Certainty() changed the state")
	}
}

func TestManager_SecondaryAndThresholds(t *testing.T) {
	m := NewManager(Config{RaiseThreshold: 1, LowerThreshold: 1}, nil)
	var got []Notification
	m.Subscribe(func(n Notification) { got = append(got, n) })

	primary := newTrack(t, 219000005)
	secondary := newTrack(t, 219000006)

	m.AbnormalBehaviourDetected(models.EventClassCloseEncounter, primary, secondary)
	m.NormalBehaviourDetected(models.EventClassCloseEncounter, primary)

	if !equalKinds(kinds(got), []Kind{KindRaise, KindLower}) {
		t.Fatalf("notifications = %v, want [raise lower]", kinds(got))
	}
	if got[0].Secondary != secondary {
		t.Error("raise should carry the secondary track")
	}
	if got[0].Certainty != models.EventCertaintyRaised || got[1].Certainty != models.EventCertaintyUncertain {
		t.Errorf("certainties = %v, %v", got[0].Certainty, got[1].Certainty)
	}

	stats := m.Stats()
	if stats.Raised != 1 || stats.Lowered != 1 || stats.Maintained != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestManager_LowerCarriesCertaintyBeforeClearing(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	var got []Notification
	m.Subscribe(func(n Notification) { got = append(got, n) })

	track := newTrack(t, 219000007)
	class := models.EventClassCourseOverGround
	feed(m, class, track, abnormal, abnormal, normal, normal, normal)

	if !equalKinds(kinds(got), []Kind{KindRaise, KindMaintain, KindMaintain, KindLower}) {
		t.Fatalf("notifications = %v", kinds(got))
	}
	lower := got[len(got)-1]
	if lower.Certainty != models.EventCertaintyUncertain {
		t.Errorf("lower certainty = %v, want UNCERTAIN", lower.Certainty)
	}
	if c := CertaintyAtCurrentPosition(class, track); c != models.EventCertaintyLowered {
		t.Errorf("stamped certainty = %v, want LOWERED", c)
	}
}

func TestManager_ConcurrentVerdictsForOneTrack(t *testing.T) {
	const n = 64

	m := NewManager(DefaultConfig(), nil)
	var mu sync.Mutex
	count := make(map[Kind]int)
	m.Subscribe(func(nt Notification) {
		mu.Lock()
		count[nt.Kind]++
		mu.Unlock()
	})

	track := newTrack(t, 219000008)
	class := models.EventClassSpeedOverGround

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m.AbnormalBehaviourDetected(class, track, nil)
		}()
	}
	close(start)
	wg.Wait()

	if count[KindRaise] != 1 {
		t.Errorf("raises = %d, want 1", count[KindRaise])
	}
	if count[KindMaintain] != n-2 {
		t.Errorf("maintains = %d, want %d", count[KindMaintain], n-2)
	}
	if count[KindLower] != 0 {
		t.Errorf("lowers = %d, want 0", count[KindLower])
	}
	if state := track.Behaviour(class); !state.Active || state.RaiseScore != 0 || state.LowerScore != 0 {
		t.Errorf("state = %+v, want active with cleared scores", state)
	}
}
