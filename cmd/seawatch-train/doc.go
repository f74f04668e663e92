// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package main is seawatch-train, which builds the statistics store that
// seawatch's statistical analyses read.
//
// It replays a recorded JSON lines file through the same filter chain and
// tracker as seawatch, counts every vessel once per grid cell entered, and
// merges the counts into the BadgerDB store at statistics.path. Existing
// counts are kept, so recordings can be trained one after another. The
// store remembers its grid resolution and speed table; a run configured
// with different ones is refused.
//
// Configuration is shared with seawatch:
//
//	INGEST_FILE_PATH=2026-05.jsonl STATISTICS_PATH=/data/statistics \
//	FILTER_DOWNSAMPLING=10s ./seawatch-train
//
// An interrupted run still writes what it counted before the signal.
package main
