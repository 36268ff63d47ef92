package optimizer

import (
	"fmt"
	"math"

	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/model"
)

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) clamp(v int) int { return max(r.Min, min(v, r.Max)) }

// Options controls the search.
type Options struct {
	Iterations int
	Walkers    int
	// Threshold is the exclusive upper bound on the downtime percentile of a
	// feasible configuration.
	Threshold  float64
	Percentile float64
	// Bounds limits the count of each searchable producer or battery type.
	// Types without an entry, or with Max == 0, are not searched.
	Bounds      map[string]Range
	HeightRange Range
	Step        int
	Seed        uint64
	// RequireSurplus also demands a non-negative mean energy surplus.
	RequireSurplus bool
	// WaterShare is the long-run fraction of days water producers run. When
	// set, the LP seed scales water output by it instead of trusting the
	// seasons of a single replayed run.
	WaterShare float64
}

// DefaultBounds covers the built-in producers and battery.
func DefaultBounds() map[string]Range {
	return map[string]Range{
		catalog.PowerWheel:     {0, 20},
		catalog.WaterWheel:     {0, 20},
		catalog.LargeWindmill:  {0, 30},
		catalog.Windmill:       {0, 30},
		catalog.GravityBattery: {0, 20},
	}
}

// DefaultOptions returns the settings of the command line tool.
func DefaultOptions() Options {
	return Options{
		Iterations:  150,
		Walkers:     8,
		Threshold:   0.05,
		Percentile:  0.95,
		Bounds:      DefaultBounds(),
		HeightRange: Range{1, 20},
		Step:        1,
		Seed:        1,
	}
}

func (o Options) validate(cat *catalog.Catalog) error {
	if o.Iterations < 0 {
		return &model.ParamError{Name: "iterations", Value: o.Iterations, Reason: "must not be negative"}
	}
	if o.Walkers < 1 {
		return &model.ParamError{Name: "walkers", Value: o.Walkers, Reason: "must be at least 1"}
	}
	if !(o.Threshold > 0 && o.Threshold <= 1) {
		return &model.ParamError{Name: "threshold", Value: o.Threshold, Reason: "must be in (0,1]"}
	}
	if o.Percentile < 0 || o.Percentile > 1 || math.IsNaN(o.Percentile) {
		return &model.ParamError{Name: "percentile", Value: o.Percentile, Reason: "must be in [0,1]"}
	}
	if o.WaterShare < 0 || o.WaterShare > 1 || math.IsNaN(o.WaterShare) {
		return &model.ParamError{Name: "water_share", Value: o.WaterShare, Reason: "must be in [0,1]"}
	}
	if o.Step < 1 {
		return &model.ParamError{Name: "step", Value: o.Step, Reason: "must be at least 1"}
	}
	if o.HeightRange.Min < 1 || o.HeightRange.Max < o.HeightRange.Min {
		return &model.ParamError{Name: "height_range", Value: o.HeightRange, Reason: "must satisfy 1 <= min <= max"}
	}
	for id, r := range o.Bounds {
		spec, err := cat.Spec(id)
		if err != nil {
			return err
		}
		if spec.IsConsumer() {
			return &model.ParamError{Name: "bounds", Value: id, Reason: "consumers are fixed by the required set"}
		}
		if r.Min < 0 || r.Max < r.Min {
			return &model.ParamError{Name: "bounds", Value: r, Reason: fmt.Sprintf("%s: must satisfy 0 <= min <= max", id)}
		}
	}
	return nil
}
