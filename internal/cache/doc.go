// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package cache provides the in-memory structures shared by the analyses and
the statistics store.

# LRU

LRU is a generic least recently used cache with optional TTL. The
statistics store fronts its badger reads with one, and the close encounter
analysis uses one keyed by vessel pair and timestamp to skip pairs it has
already compared:

	seen := cache.NewLRU[pairKey, struct{}](10000, 0)
	if seen.IsDuplicate(pairKey{a, b, ts}) {
	    return
	}

# SpatialHashGrid

SpatialHashGrid buckets vessel positions into square cells so that "who is
within one nautical mile of here" scans a handful of cells instead of every
track:

	idx := cache.NewSpatialHashGrid[int, *tracker.Track](1852)
	idx.Insert(mmsi, pos, ts, track)
	nearby := idx.QueryNearby(pos, 1852, ts.Add(-time.Minute), ts.Add(time.Minute))

Both types are safe for concurrent use.
*/
package cache
