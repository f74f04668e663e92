// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tomtom215/seawatch/internal/behaviour"
	"github.com/tomtom215/seawatch/internal/events"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// descriptionTimeFormat formats timestamps in event descriptions.
const descriptionTimeFormat = "02/01/2006 15:04"

// Analysis is one behaviour analysis.
type Analysis interface {
	// Name identifies the analysis in logs, metrics and statistics.
	Name() string

	// Attach subscribes the analysis to the tracking service. It must be
	// called once, before the first update.
	Attach(s *tracker.Service)

	// Enabled returns whether the analysis currently runs.
	Enabled() bool

	// SetEnabled enables or disables the analysis.
	SetEnabled(enabled bool)
}

// Notifier receives every event after it has been saved.
type Notifier interface {
	Notify(ctx context.Context, e *models.Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e *models.Event)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, e *models.Event) { f(ctx, e) }

// Deps are the collaborators shared by the analyses.
type Deps struct {
	Events    events.Repository
	Behaviour *behaviour.Manager
	Stats     *Stats

	// Notifier is optional.
	Notifier Notifier

	// StoreTimeout bounds each repository call.
	StoreTimeout time.Duration
}

// base carries what every analysis needs to manage events.
type base struct {
	name     string
	events   events.Repository
	manager  *behaviour.Manager
	stats    *Stats
	notifier Notifier
	timeout  time.Duration
	enabled  atomic.Bool

	// locks makes each find-then-save of an ongoing event atomic per vessel.
	locks vesselLocks
}

func (b *base) init(name string, enabled bool, deps Deps) {
	if deps.Stats == nil {
		deps.Stats = NewStats()
	}
	b.name = name
	b.events = deps.Events
	b.manager = deps.Behaviour
	b.stats = deps.Stats
	b.notifier = deps.Notifier
	b.timeout = deps.StoreTimeout
	if b.timeout <= 0 {
		b.timeout = DefaultConfig().StoreTimeout
	}
	b.enabled.Store(enabled)
}

func (b *base) Name() string { return b.name }

func (b *base) Enabled() bool { return b.enabled.Load() }

func (b *base) SetEnabled(enabled bool) {
	b.enabled.Store(enabled)
	logging.Info().Str("analysis", b.name).Bool("enabled", enabled).Msg("analysis toggled")
}

func (b *base) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *base) received() {
	b.stats.Inc(b.name, StatEventsReceived)
}

func (b *base) skip(reason string) {
	b.stats.Inc(b.name, reason)
	metrics.RecordAnalysisSkip(b.name, reason)
}

func (b *base) performed(start time.Time) {
	b.stats.Inc(b.name, StatAnalysesPerformed)
	metrics.RecordAnalysis(b.name, time.Since(start))
}

// raiseOrMaintain appends the track's newest report to its ongoing event
// of class, or builds and stores a new event when none is ongoing.
// secondary, when given, also gets its newest report appended.
func (b *base) raiseOrMaintain(class models.EventClass, track, secondary *tracker.Track, build func() *models.Event) {
	involved := []int{track.MMSI()}
	if secondary != nil {
		involved = append(involved, secondary.MMSI())
	}
	unlock := b.locks.lock(involved...)
	defer unlock()

	ctx, cancel := b.context()
	defer cancel()

	e, err := b.events.FindOngoingByVessel(ctx, track.MMSI(), class)
	switch {
	case err == nil:
		appendNewestPoint(e, class, track)
		if secondary != nil {
			appendNewestPoint(e, class, secondary)
		}
	case errors.Is(err, events.ErrNotFound):
		if e = build(); e == nil {
			return
		}
		b.stats.Inc(b.name, StatEventsRaised)
		logging.Info().
			Str("analysis", b.name).
			Str("event_id", e.ID.String()).
			Int("mmsi", track.MMSI()).
			Str("description", e.Description).
			Msg("abnormal event raised")
	default:
		logging.Error().Err(err).Str("analysis", b.name).Int("mmsi", track.MMSI()).Msg("failed to look up ongoing event")
		return
	}

	b.save(ctx, e)
}

// lowerIfExists ends the track's ongoing event of class, if any.
func (b *base) lowerIfExists(class models.EventClass, track *tracker.Track) {
	unlock := b.locks.lock(track.MMSI())
	defer unlock()

	ctx, cancel := b.context()
	defer cancel()

	e, err := b.events.FindOngoingByVessel(ctx, track.MMSI(), class)
	if err != nil {
		if !errors.Is(err, events.ErrNotFound) {
			logging.Error().Err(err).Str("analysis", b.name).Int("mmsi", track.MMSI()).Msg("failed to look up ongoing event")
		}
		return
	}
	e.Close(track.LastUpdate())
	logging.Info().
		Str("analysis", b.name).
		Str("event_id", e.ID.String()).
		Int("mmsi", track.MMSI()).
		Msg("abnormal event lowered")
	b.save(ctx, e)
}

func (b *base) save(ctx context.Context, e *models.Event) {
	if err := b.events.Save(ctx, e); err != nil {
		logging.Error().Err(err).Str("analysis", b.name).Str("event_id", e.ID.String()).Msg("failed to save event")
		return
	}
	if b.notifier != nil {
		b.notifier.Notify(ctx, e)
	}
}

// newTrackEvent starts an event of class with the track as primary vessel
// and its newest report as first tracking point. It returns nil when the
// track has no position.
func newTrackEvent(class models.EventClass, track *tracker.Track) *models.Event {
	r, ok := track.NewestReport()
	if !ok {
		return nil
	}
	e := models.NewEvent(class, r.Timestamp)
	e.AddBehaviour(track.Vessel(), true).AddTrackingPoint(r.Point(class))
	return e
}

func appendNewestPoint(e *models.Event, class models.EventClass, track *tracker.Track) {
	r, ok := track.NewestReport()
	if !ok {
		return
	}
	bhv := e.BehaviourOf(track.MMSI())
	if bhv == nil {
		bhv = e.AddBehaviour(track.Vessel(), false)
	}
	bhv.AddTrackingPoint(r.Point(class))
}

// addPreviousTrackingPoints copies the track's history before its newest
// position into its behaviour. Unless all is set, only reports carrying a
// certainty for class are copied.
func addPreviousTrackingPoints(e *models.Event, class models.EventClass, track *tracker.Track, all bool) {
	bhv := e.BehaviourOf(track.MMSI())
	if bhv == nil {
		return
	}
	last := track.LastPositionUpdate()
	for _, r := range track.Reports() {
		if !r.Timestamp.Before(last) {
			continue
		}
		p := r.Point(class)
		if all || p.Certainty.Defined() {
			bhv.AddTrackingPoint(p)
		}
	}
}

// behaviourHandler routes the manager's notifications of class to the
// event lifecycle.
func (b *base) behaviourHandler(class models.EventClass, build func(track, secondary *tracker.Track) *models.Event) func(behaviour.Notification) {
	return func(n behaviour.Notification) {
		if n.Class != class {
			return
		}
		switch n.Kind {
		case behaviour.KindRaise, behaviour.KindMaintain:
			b.raiseOrMaintain(class, n.Track, n.Secondary, func() *models.Event {
				return build(n.Track, n.Secondary)
			})
		case behaviour.KindLower:
			b.lowerIfExists(class, n.Track)
		}
	}
}
