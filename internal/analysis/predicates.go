// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// Vessel length limits in metres.
const (
	LongVesselLength     = 30
	VeryLongVesselLength = 75
)

// SlowVesselSpeed is the speed in knots below which a vessel is slow.
const SlowVesselSpeed = 3.0

// A Predicate classifies a track. Predicates are false when the attribute
// they test is unknown.
type Predicate func(t *tracker.Track) bool

// IsSpecialCraft matches ship types 50-55 (pilots, SAR, tugs, port tenders,
// anti-pollution, law enforcement).
func IsSpecialCraft(t *tracker.Track) bool {
	st, ok := t.ShipType()
	return ok && st >= 50 && st <= 55
}

func shipTypeCategoryIs(category int) Predicate {
	return func(t *tracker.Track) bool {
		st, ok := t.ShipType()
		return ok && categorizer.ShipType(st) == category
	}
}

var (
	IsTanker          = shipTypeCategoryIs(categorizer.ShipTypeTanker)
	IsCargo           = shipTypeCategoryIs(categorizer.ShipTypeCargo)
	IsPassenger       = shipTypeCategoryIs(categorizer.ShipTypePassenger)
	IsSupport         = shipTypeCategoryIs(categorizer.ShipTypeSupport)
	IsFishingVessel   = shipTypeCategoryIs(categorizer.ShipTypeFishing)
	IsClassB          = shipTypeCategoryIs(categorizer.ShipTypeClassB)
	IsUndefinedVessel = shipTypeCategoryIs(categorizer.ShipTypeUndefined)
)

// IsUnknownTypeOrSize matches tracks without a ship type or dimensions.
func IsUnknownTypeOrSize(t *tracker.Track) bool {
	_, hasType := t.ShipType()
	_, hasLength := t.VesselLength()
	return !hasType || !hasLength
}

// IsSlow matches tracks reporting less than SlowVesselSpeed.
func IsSlow(t *tracker.Track) bool {
	sog, ok := t.SpeedOverGround()
	return ok && sog < SlowVesselSpeed
}

// IsLong matches vessels of LongVesselLength or more.
func IsLong(t *tracker.Track) bool {
	l, ok := t.VesselLength()
	return ok && l >= LongVesselLength
}

// IsVeryLong matches vessels of VeryLongVesselLength or more.
func IsVeryLong(t *tracker.Track) bool {
	l, ok := t.VesselLength()
	return ok && l >= VeryLongVesselLength
}

// IsSmall matches vessels shorter than LongVesselLength.
func IsSmall(t *tracker.Track) bool {
	l, ok := t.VesselLength()
	return ok && l < LongVesselLength
}

// IsEngagedInTowing matches ship types 31 and 32.
func IsEngagedInTowing(t *tracker.Track) bool {
	st, ok := t.ShipType()
	return ok && (st == 31 || st == 32)
}

// IsEngagedInFishing matches ship type 30.
func IsEngagedInFishing(t *tracker.Track) bool {
	st, ok := t.ShipType()
	return ok && st == 30
}

// Any returns a predicate matching when at least one of ps matches.
func Any(ps ...Predicate) Predicate {
	return func(t *tracker.Track) bool {
		for _, p := range ps {
			if p(t) {
				return true
			}
		}
		return false
	}
}

// IsLargeOrCommercial matches very long vessels and any tanker, cargo or
// passenger vessel.
func IsLargeOrCommercial(t *tracker.Track) bool {
	return IsVeryLong(t) || IsCargo(t) || IsTanker(t) || IsPassenger(t)
}
