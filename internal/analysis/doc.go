// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package analysis detects abnormal vessel behaviour from track events.

Analyses subscribe to the tracking service and fall into three groups:

Statistical analyses (CourseOverGroundAnalysis, SpeedOverGroundAnalysis,
ShipTypeAndSizeAnalysis) run when a track enters a new grid cell. They look
up the trained histogram of the cell and compute

	pd = shipCount / totalCount

for the vessel's categories. A cell with too little data yields pd = 1. The
verdict (pd below the threshold is abnormal) is passed to the behaviour
manager, whose raise, maintain and lower notifications drive the event
lifecycle.

Rule based analyses (DriftAnalysis, SuddenSpeedChangeAnalysis,
CloseEncounterAnalysis) run on every position change and apply geometric or
kinematic rules. Close encounter verdicts also go through the behaviour
manager; drift and sudden speed change manage their events directly.

FreeFlowAnalysis runs periodically on stream time and reports vessel groups
sailing close together to a FreeFlowSink. It raises no events.

Events are stored through an events.Repository and every saved event is
handed to the optional Notifier.

Per-analysis counters are kept in Stats and mirrored to Prometheus.
*/
package analysis
