// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package training builds the per-cell histograms the statistical
// analyses consult. A Builder listens to the tracker's cell changes while
// recorded traffic is replayed, counts each vessel once per cell entered,
// and merges the counts into a statistics store on Flush.
//
// Three features are counted:
//
//	ShipTypeAndSizeStatistic  vessels per ship type and length category
//	SpeedOverGroundStatistic  the same split by speed bucket
//	CourseOverGroundFeature   the same split by course bucket, for vessels
//	                          making at least CourseSOGMin knots
package training
