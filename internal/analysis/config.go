// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package analysis

import (
	"time"

	"github.com/tomtom215/seawatch/internal/geometry"
)

// Config enables and parameterises every analysis.
type Config struct {
	CourseOverGround  StatisticalConfig         `koanf:"cog"`
	SpeedOverGround   StatisticalConfig         `koanf:"sog"`
	ShipTypeAndSize   StatisticalConfig         `koanf:"typesize"`
	Drift             DriftConfig               `koanf:"drift"`
	SuddenSpeedChange SuddenSpeedChangeConfig   `koanf:"suddenspeedchange"`
	CloseEncounter    CloseEncounterConfig      `koanf:"closeencounter"`
	FreeFlow          FreeFlowConfig            `koanf:"freeflow"`
	SafetyZone        geometry.SafetyZoneConfig `koanf:"safetyzone"`

	// StoreTimeout bounds each event repository call.
	StoreTimeout time.Duration `koanf:"store_timeout" validate:"gt=0"`
}

// StatisticalConfig parameterises a histogram based analysis.
type StatisticalConfig struct {
	Enabled bool `koanf:"enabled"`

	// PD is the probability below which the observation is abnormal.
	PD float64 `koanf:"pd" validate:"gt=0,lte=1"`

	// CellShipCountMin is the number of trained observations a cell needs
	// before it can yield an abnormal verdict.
	CellShipCountMin int `koanf:"cell_ship_count_min" validate:"gte=0"`

	// SOGMin skips vessels slower than this, in knots. Zero disables.
	SOGMin float64 `koanf:"sog_min" validate:"gte=0"`

	// LOAMin skips vessels shorter than this, in metres. Zero disables.
	LOAMin int `koanf:"loa_min" validate:"gte=0"`
}

// DriftConfig parameterises DriftAnalysis.
type DriftConfig struct {
	Enabled bool `koanf:"enabled"`

	// SOGMin and SOGMax bound the drifting speed in knots.
	SOGMin float64 `koanf:"sog_min" validate:"gte=0"`
	SOGMax float64 `koanf:"sog_max" validate:"gtfield=SOGMin"`

	// COGHeadingDeviation is the minimum angle in degrees between course
	// and both heading and reverse heading.
	COGHeadingDeviation float64 `koanf:"cog_hdg" validate:"gt=0,lte=90"`

	// Period is how long drift must be sustained. It must be shorter than
	// the tracker history window, which bounds the observable span.
	Period time.Duration `koanf:"period" validate:"gt=0"`

	// Distance is how far in metres the vessel must drift.
	Distance float64 `koanf:"distance" validate:"gt=0"`

	LOAMin int `koanf:"loa_min" validate:"gte=0"`
}

// SuddenSpeedChangeConfig parameterises SuddenSpeedChangeAnalysis.
type SuddenSpeedChangeConfig struct {
	Enabled bool `koanf:"enabled"`

	// SOGHigh is the speed the vessel must come from and SOGLow the speed
	// it must fall to, in knots.
	SOGHigh float64 `koanf:"sog_high" validate:"gtfield=SOGLow"`
	SOGLow  float64 `koanf:"sog_low" validate:"gte=0"`

	// Decay is the longest the drop may take.
	Decay time.Duration `koanf:"decay" validate:"gt=0"`

	// Sustain is how long the low speed must be kept.
	Sustain time.Duration `koanf:"sustain" validate:"gt=0"`

	LOAMin int `koanf:"loa_min" validate:"gte=0"`
}

// CloseEncounterConfig parameterises CloseEncounterAnalysis.
type CloseEncounterConfig struct {
	Enabled bool `koanf:"enabled"`

	// SOGMin is the speed in knots below which a vessel is not analysed.
	SOGMin float64 `koanf:"sog_min" validate:"gte=0"`

	// Radius is the distance in metres within which other vessels are
	// considered.
	Radius float64 `koanf:"radius" validate:"gt=0"`

	// TimeWindow is how far apart in time two positions may be.
	TimeWindow time.Duration `koanf:"time_window" validate:"gt=0"`

	// Retention is how long positions are kept in the spatial index.
	Retention time.Duration `koanf:"retention" validate:"gt=0"`

	// DedupeSize bounds the set of pairs already analysed.
	DedupeSize int `koanf:"dedupe_size" validate:"gt=0"`
}

// FreeFlowConfig parameterises FreeFlowAnalysis.
type FreeFlowConfig struct {
	Enabled bool `koanf:"enabled"`

	// RunPeriod is the stream time between runs.
	RunPeriod time.Duration `koanf:"run_period" validate:"gt=0"`

	// Area limits the analysis. An empty box disables the analysis.
	Area geometry.BoundingBox `koanf:"bbox"`

	// XL and XB scale the ellipse half axes by the vessel length and beam.
	XL float64 `koanf:"xl" validate:"gt=0"`
	XB float64 `koanf:"xb" validate:"gt=0"`

	// DCOG is the largest course difference in degrees of vessels
	// considered to sail together.
	DCOG float64 `koanf:"dcog" validate:"gt=0,lte=180"`
}

// DefaultConfig returns the standard analysis settings.
func DefaultConfig() Config {
	return Config{
		CourseOverGround: StatisticalConfig{
			Enabled:          true,
			PD:               0.001,
			CellShipCountMin: 1000,
			SOGMin:           2.0,
		},
		SpeedOverGround: StatisticalConfig{
			Enabled:          true,
			PD:               0.001,
			CellShipCountMin: 1000,
		},
		ShipTypeAndSize: StatisticalConfig{
			Enabled:          true,
			PD:               0.001,
			CellShipCountMin: 1000,
			SOGMin:           2.0,
		},
		Drift: DriftConfig{
			Enabled:             true,
			SOGMin:              1.0,
			SOGMax:              5.0,
			COGHeadingDeviation: 45.0,
			Period:              8 * time.Minute,
			Distance:            500.0,
			LOAMin:              50,
		},
		SuddenSpeedChange: SuddenSpeedChangeConfig{
			Enabled: true,
			SOGHigh: 7.0,
			SOGLow:  1.0,
			Decay:   30 * time.Second,
			Sustain: 60 * time.Second,
			LOAMin:  50,
		},
		CloseEncounter: CloseEncounterConfig{
			Enabled:    true,
			SOGMin:     5.0,
			Radius:     geometry.MetersPerNauticalMile,
			TimeWindow: time.Minute,
			Retention:  10 * time.Minute,
			DedupeSize: 50000,
		},
		FreeFlow: FreeFlowConfig{
			Enabled:   false,
			RunPeriod: 30 * time.Minute,
			XL:        8,
			XB:        8,
			DCOG:      15,
		},
		SafetyZone:   geometry.DefaultSafetyZoneConfig(),
		StoreTimeout: 5 * time.Second,
	}
}

// EnabledByName maps every analysis name to its enable flag.
func (c Config) EnabledByName() map[string]bool {
	return map[string]bool{
		"CourseOverGroundAnalysis":  c.CourseOverGround.Enabled,
		"SpeedOverGroundAnalysis":   c.SpeedOverGround.Enabled,
		"ShipTypeAndSizeAnalysis":   c.ShipTypeAndSize.Enabled,
		"DriftAnalysis":             c.Drift.Enabled,
		"SuddenSpeedChangeAnalysis": c.SuddenSpeedChange.Enabled,
		"CloseEncounterAnalysis":    c.CloseEncounter.Enabled,
		"FreeFlowAnalysis":          c.FreeFlow.Enabled,
	}
}
