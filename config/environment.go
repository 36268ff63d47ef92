package config

import (
	"github.com/kilianp07/powermix/core/environment"
)

// SeasonsConfig sets the length in days of each block of the season cycle.
// The wet block appears twice per cycle.
type SeasonsConfig struct {
	Wet     int `json:"wet"`
	Dry     int `json:"dry"`
	Badtide int `json:"badtide"`
}

// SetDefaults applies the standard 3/30/30 cycle when nothing is set.
func (c *SeasonsConfig) SetDefaults() {
	if c.Wet == 0 && c.Dry == 0 && c.Badtide == 0 {
		c.Wet, c.Dry, c.Badtide = 3, 30, 30
	}
}

// Calendar builds the season cycle.
func (c SeasonsConfig) Calendar() environment.Calendar {
	return environment.StandardCalendar(c.Wet, c.Dry, c.Badtide)
}

func (c SeasonsConfig) Validate() error { return c.Calendar().Validate() }

// WindConfig selects the wind distribution.
type WindConfig struct {
	Distribution string  `json:"distribution"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"stddev"`
	GustMinHours int     `json:"gust_min_hours"`
	GustMaxHours int     `json:"gust_max_hours"`
}

// SetDefaults fills zero fields from environment.DefaultWind. A zero Max
// is read as unset.
func (c *WindConfig) SetDefaults() {
	def := environment.DefaultWind()
	if c.Distribution == "" {
		c.Distribution = def.Distribution
	}
	if c.Max == 0 {
		c.Max = def.Max
	}
	if c.Mean == 0 {
		c.Mean = def.Mean
	}
	if c.StdDev == 0 {
		c.StdDev = def.StdDev
	}
}

// Model converts the section.
func (c WindConfig) Model() environment.WindModel {
	return environment.WindModel{
		Distribution: c.Distribution,
		Min:          c.Min,
		Max:          c.Max,
		Mean:         c.Mean,
		StdDev:       c.StdDev,
		GustMinHours: c.GustMinHours,
		GustMaxHours: c.GustMaxHours,
	}
}

func (c WindConfig) Validate() error { return c.Model().Validate() }

// WaterConfig bounds the per-step water flow.
type WaterConfig struct {
	MinFlow *float64 `json:"min_flow"`
}

// SetDefaults keeps water producers at full rating.
func (c *WaterConfig) SetDefaults() {
	if c.MinFlow == nil {
		v := 1.0
		c.MinFlow = &v
	}
}

// Model converts the section.
func (c WaterConfig) Model() environment.WaterModel {
	m := environment.WaterModel{MinFlow: 1}
	if c.MinFlow != nil {
		m.MinFlow = *c.MinFlow
	}
	return m
}

func (c WaterConfig) Validate() error { return c.Model().Validate() }

// GeneratorOptions assembles the environment generator settings.
func (c *Config) GeneratorOptions() environment.Options {
	return environment.Options{
		Calendar: c.Seasons.Calendar(),
		Wind:     c.Wind.Model(),
		Water:    c.Water.Model(),
	}
}
