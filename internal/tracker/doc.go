// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package tracker turns a stream of decoded vessel reports into stateful
per-vessel tracks and publishes track events to the analyses.

# Tracks

A Track holds the latest static data of one vessel (MMSI), a ten minute
trailing history of TrackingReports, the grid cell of its newest position
and one BehaviourState per models.EventClass. Reports older than the
track's last accepted update are dropped and counted; the history window
is relative to the newest stored report, not to wall-clock time.

# Events

Service publishes four kinds of events on typed buses:

  - PositionChangedEvent: every time a track's position changes
  - CellChangedEvent: exactly once per grid cell boundary crossing, and when
    a track gains or loses a valid position
  - TrackStaleEvent: when a track is dropped after StaleAge of silence
  - TimeEvent: roughly every TimeEventPeriod of stream time

Gaps of InterpolationThreshold or more between two position reports are
filled with synthetic reports every InterpolationStep, flagged
Interpolated, and each of them goes through the same event logic as a real
report.

# Concurrency

Update is meant to be called from one goroutine per input stream. Track
accessors take the track's RWMutex so analyses running on bus workers can
read tracks concurrently with ingestion. Behaviour state is changed only
through Track.UpdateBehaviour, which holds the track's write lock for the
whole read-modify-write.
*/
package tracker
