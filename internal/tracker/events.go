// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package tracker

import (
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/grid"
)

// PositionChangedEvent is published when a track's position changes.
// Previous is nil for the first position of a track.
type PositionChangedEvent struct {
	Track    *Track
	Previous *geometry.Position
}

// CellChangedEvent is published when a track enters a new grid cell, or
// gains or loses a valid position. PreviousCell is nil when the track had
// no cell before.
type CellChangedEvent struct {
	Track        *Track
	PreviousCell *grid.CellID
}

// TrackStaleEvent is published when a track is dropped for inactivity.
type TrackStaleEvent struct {
	Track *Track
}

// TimeEvent marks the progress of stream time. SinceLast is negative for
// the first event.
type TimeEvent struct {
	Timestamp time.Time
	SinceLast time.Duration
}
