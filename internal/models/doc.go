// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package models defines the abnormal event aggregate shared by the analyses,
the event repositories, the notifiers and the HTTP API.

Key Components:

  - EventClass: closed enumeration of abnormality kinds
  - EventCertainty: certainty stamped on every tracking point
  - Event: an ONGOING or PAST abnormal event with one Behaviour per vessel
  - Behaviour: a Vessel snapshot plus its ordered TrackingPoints

Invariants:

  - Exactly one Behaviour of an Event is marked Primary.
  - TrackingPoints of a Behaviour are kept sorted by Timestamp.
  - At most one ONGOING event exists per (vessel, EventClass); this is
    enforced by the behaviour manager, not by the models.
*/
package models
