// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package behaviour turns per-message normal/abnormal verdicts into stable
// raise, maintain and lower notifications.
//
// Per (event class, track) the manager runs a two-state hysteresis machine:
//
//	Inactive + abnormal  RaiseScore++; at RaiseThreshold go Active and emit Raise
//	Active   + abnormal  LowerScore = 0; emit Maintain
//	Inactive + normal    scores reset; no notification
//	Active   + normal    LowerScore++; at LowerThreshold go Inactive and emit
//	                     Lower, otherwise emit Maintain
//	stale                state cleared; no notification
//
// A Maintain emitted on a normal verdict only says the event is still open.
package behaviour

import (
	"sync/atomic"

	"github.com/tomtom215/seawatch/internal/eventbus"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// Kind is the type of a behaviour notification.
type Kind int

const (
	KindRaise Kind = iota + 1
	KindMaintain
	KindLower
)

func (k Kind) String() string {
	switch k {
	case KindRaise:
		return "raise"
	case KindMaintain:
		return "maintain"
	case KindLower:
		return "lower"
	default:
		return "unknown"
	}
}

// Notification reports an event lifecycle transition.
type Notification struct {
	Kind      Kind
	Class     models.EventClass
	Certainty models.EventCertainty
	Track     *tracker.Track

	// Secondary is the other vessel of a two-vessel event, or nil.
	Secondary *tracker.Track
}

// Config holds the hysteresis thresholds.
type Config struct {
	RaiseThreshold int `koanf:"raise_threshold" validate:"gte=1"`
	LowerThreshold int `koanf:"lower_threshold" validate:"gte=1"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{RaiseThreshold: 2, LowerThreshold: 3}
}

// Manager runs the hysteresis state machine. State lives on the tracks.
type Manager struct {
	cfg Config
	bus *eventbus.Bus[Notification]

	raised     atomic.Int64
	maintained atomic.Int64
	lowered    atomic.Int64
}

// NewManager creates a manager publishing on bus. A nil bus gets a
// synchronous one.
func NewManager(cfg Config, bus *eventbus.Bus[Notification]) *Manager {
	def := DefaultConfig()
	if cfg.RaiseThreshold < 1 {
		cfg.RaiseThreshold = def.RaiseThreshold
	}
	if cfg.LowerThreshold < 1 {
		cfg.LowerThreshold = def.LowerThreshold
	}
	if bus == nil {
		bus = eventbus.New[Notification](eventbus.Config{Name: "behaviour"})
	}
	logging.Info().
		Int("raise_threshold", cfg.RaiseThreshold).
		Int("lower_threshold", cfg.LowerThreshold).
		Msg("behaviour manager created")
	return &Manager{cfg: cfg, bus: bus}
}

// Subscribe registers h for every notification.
func (m *Manager) Subscribe(h func(Notification)) {
	m.bus.Subscribe(h)
}

// AbnormalBehaviourDetected feeds an abnormal verdict. secondary is passed
// on with a Raise for two-vessel events.
func (m *Manager) AbnormalBehaviourDetected(class models.EventClass, track *tracker.Track, secondary *tracker.Track) {
	metrics.RecordVerdict(class.String(), true)

	var kind Kind
	var certainty models.EventCertainty
	track.UpdateBehaviour(class, func(s *tracker.BehaviourState) models.EventCertainty {
		if s.Active {
			s.RaiseScore = 0
			s.LowerScore = 0
			kind = KindMaintain
		} else {
			s.RaiseScore++
			if s.RaiseScore >= m.cfg.RaiseThreshold {
				*s = tracker.BehaviourState{Active: true}
				kind = KindRaise
			}
		}
		certainty = certaintyOf(*s)
		return certainty
	})

	if kind != 0 {
		m.publish(Notification{Kind: kind, Class: class, Certainty: certainty, Track: track, Secondary: secondary})
	}
}

// NormalBehaviourDetected feeds a normal verdict. A Lower carries the
// certainty the event had when the threshold was reached, while the newest
// report is stamped with the cleared state.
func (m *Manager) NormalBehaviourDetected(class models.EventClass, track *tracker.Track) {
	metrics.RecordVerdict(class.String(), false)

	var kind Kind
	var certainty models.EventCertainty
	track.UpdateBehaviour(class, func(s *tracker.BehaviourState) models.EventCertainty {
		if !s.Active {
			*s = tracker.BehaviourState{}
			return certaintyOf(*s)
		}
		s.RaiseScore = 0
		s.LowerScore++
		certainty = certaintyOf(*s)
		if s.LowerScore < m.cfg.LowerThreshold {
			kind = KindMaintain
			return certainty
		}
		kind = KindLower
		*s = tracker.BehaviourState{}
		return certaintyOf(*s)
	})

	if kind != 0 {
		m.publish(Notification{Kind: kind, Class: class, Certainty: certainty, Track: track})
	}
}

// TrackStaleDetected clears the state of class without notifying.
func (m *Manager) TrackStaleDetected(class models.EventClass, track *tracker.Track) {
	track.UpdateBehaviour(class, func(s *tracker.BehaviourState) models.EventCertainty {
		*s = tracker.BehaviourState{}
		return models.EventCertaintyUndefined
	})
}

// Certainty derives the certainty of class from the track's current state
// without changing it.
func Certainty(class models.EventClass, track *tracker.Track) models.EventCertainty {
	if !class.Valid() {
		return models.EventCertaintyUndefined
	}
	return certaintyOf(track.Behaviour(class))
}

// CertaintyAtCurrentPosition returns the certainty stamped on the track's
// newest report.
func CertaintyAtCurrentPosition(class models.EventClass, track *tracker.Track) models.EventCertainty {
	r, ok := track.NewestReport()
	if !ok || !class.Valid() {
		return models.EventCertaintyUndefined
	}
	return r.Certainty[class]
}

func certaintyOf(s tracker.BehaviourState) models.EventCertainty {
	switch {
	case !s.Active && s.RaiseScore == 0:
		return models.EventCertaintyLowered
	case s.Active && s.LowerScore == 0:
		return models.EventCertaintyRaised
	default:
		return models.EventCertaintyUncertain
	}
}

func (m *Manager) publish(n Notification) {
	switch n.Kind {
	case KindRaise:
		m.raised.Add(1)
	case KindMaintain:
		m.maintained.Add(1)
	case KindLower:
		m.lowered.Add(1)
	}
	metrics.RecordBehaviourNotification(n.Class.String(), n.Kind.String())
	logging.Debug().
		Int("mmsi", n.Track.MMSI()).
		Str("class", n.Class.String()).
		Str("kind", n.Kind.String()).
		Str("certainty", n.Certainty.String()).
		Msg("behaviour notification")
	m.bus.Publish(n)
}

// Stats counts emitted notifications.
type Stats struct {
	Raised     int64 `json:"raised"`
	Maintained int64 `json:"maintained"`
	Lowered    int64 `json:"lowered"`
}

// Stats returns the notification counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Raised:     m.raised.Load(),
		Maintained: m.maintained.Load(),
		Lowered:    m.lowered.Load(),
	}
}
