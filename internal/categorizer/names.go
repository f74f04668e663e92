// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package categorizer

import "fmt"

var shipTypeNames = [NumShipTypeBuckets]string{
	"tanker", "cargo", "passenger", "support", "fishing", "class b", "other", "undef",
}

var shipLengthNames = [NumShipLengthBuckets]string{
	"0-1m", "1-50m", "50-100m", "100-200m", "200-999m", "999+m",
}

// ShipTypeName names a ship type bucket.
func ShipTypeName(bucket int) string {
	if bucket < 1 || bucket > NumShipTypeBuckets {
		return "undef"
	}
	return shipTypeNames[bucket-1]
}

// ShipLengthName names a ship length bucket.
func ShipLengthName(bucket int) string {
	if bucket < 1 || bucket > NumShipLengthBuckets {
		return "undef"
	}
	return shipLengthNames[bucket-1]
}

// CourseOverGroundName names a course sector, e.g. "030-060".
func CourseOverGroundName(sector int) string {
	if sector < 0 || sector >= NumCourseOverGroundBuckets {
		return "undef"
	}
	return fmt.Sprintf("%03d-%03d", sector*30, (sector+1)*30)
}

// SpeedOverGroundName names a speed bucket, e.g. "5-10kts".
func (t SpeedTable) SpeedOverGroundName(bucket int) string {
	lo, hi, ok := t.Range(bucket)
	if !ok {
		return "undef"
	}
	return fmt.Sprintf("%g-%gkts", lo, hi)
}

// SpeedOverGroundName names a bucket of the default speed table.
func SpeedOverGroundName(bucket int) string {
	return defaultSpeeds.SpeedOverGroundName(bucket)
}
