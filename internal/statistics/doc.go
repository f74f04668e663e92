// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package statistics stores the trained per-cell histograms consulted by
// the statistical analyses. The store is read-only during inference; Put
// and Import exist for offline loading.
package statistics
