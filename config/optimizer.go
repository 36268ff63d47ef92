package config

import (
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/optimizer"
)

// OptimizerConfig controls the equipment search.
type OptimizerConfig struct {
	Iterations int     `json:"iterations"`
	Walkers    int     `json:"walkers"`
	Threshold  float64 `json:"threshold"`
	Percentile float64 `json:"percentile"`
	// Bounds limits the count of each searched producer or battery. Left
	// empty, every built-in producer and the gravity battery are searched.
	Bounds         map[string]optimizer.Range `json:"bounds"`
	MinHeight      int                        `json:"min_height"`
	MaxHeight      int                        `json:"max_height"`
	Step           int                        `json:"step"`
	Seed           uint64                     `json:"seed"`
	RequireSurplus bool                       `json:"require_surplus"`
	// Top is the number of ranked solutions reported.
	Top int `json:"top"`
}

// SetDefaults fills unset fields from optimizer.DefaultOptions. Seed 0 is a
// valid seed and is kept.
func (c *OptimizerConfig) SetDefaults() {
	def := optimizer.DefaultOptions()
	if c.Iterations == 0 {
		c.Iterations = def.Iterations
	}
	if c.Walkers == 0 {
		c.Walkers = def.Walkers
	}
	if c.Threshold == 0 {
		c.Threshold = def.Threshold
	}
	if c.Percentile == 0 {
		c.Percentile = def.Percentile
	}
	if len(c.Bounds) == 0 {
		c.Bounds = def.Bounds
	}
	if c.MinHeight == 0 {
		c.MinHeight = def.HeightRange.Min
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = def.HeightRange.Max
	}
	if c.Step == 0 {
		c.Step = def.Step
	}
	if c.Top == 0 {
		c.Top = 5
	}
}

// Options converts the section.
func (c OptimizerConfig) Options() optimizer.Options {
	return optimizer.Options{
		Iterations:     c.Iterations,
		Walkers:        c.Walkers,
		Threshold:      c.Threshold,
		Percentile:     c.Percentile,
		Bounds:         c.Bounds,
		HeightRange:    optimizer.Range{Min: c.MinHeight, Max: c.MaxHeight},
		Step:           c.Step,
		Seed:           c.Seed,
		RequireSurplus: c.RequireSurplus,
	}
}

// Validate checks the ranges that do not depend on the catalog. Bound
// identifiers are checked when the optimizer is built.
func (c OptimizerConfig) Validate() error {
	if c.Iterations < 0 {
		return &model.ParamError{Name: "iterations", Value: c.Iterations, Reason: "must not be negative"}
	}
	if c.Walkers < 1 {
		return &model.ParamError{Name: "walkers", Value: c.Walkers, Reason: "must be at least 1"}
	}
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return &model.ParamError{Name: "threshold", Value: c.Threshold, Reason: "must be in (0,1]"}
	}
	if c.Percentile < 0 || c.Percentile > 1 {
		return &model.ParamError{Name: "percentile", Value: c.Percentile, Reason: "must be in [0,1]"}
	}
	if c.MinHeight < 1 || c.MaxHeight < c.MinHeight {
		return &model.ParamError{Name: "height", Value: [2]int{c.MinHeight, c.MaxHeight}, Reason: "must satisfy 1 <= min <= max"}
	}
	if c.Top < 0 {
		return &model.ParamError{Name: "top", Value: c.Top, Reason: "must not be negative"}
	}
	return nil
}
