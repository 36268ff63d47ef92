// Package simulation advances one grid Configuration through a sequence of
// environment samples and records the power balance of every timestep.
package simulation

import (
	"math"

	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/model"
)

// Options configures the simulator.
type Options struct {
	// WorkingHours is the length of the daily window during which consumers
	// draw power and crank producers run.
	WorkingHours float64
	// WorkdayStart is the hour of day at which the window opens.
	WorkdayStart float64
	// SamplesPerDay sets the timestep length to 24/SamplesPerDay hours.
	SamplesPerDay int
	// InitialCharge is the fraction of capacity stored before the first step.
	InitialCharge float64
}

// DefaultOptions returns hourly steps, a 16 hour workday starting at midnight
// and batteries starting half full.
func DefaultOptions() Options {
	return Options{WorkingHours: 16, SamplesPerDay: 24, InitialCharge: 0.5}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.WorkingHours < 0 || o.WorkingHours > 24 || math.IsNaN(o.WorkingHours) {
		return &model.ParamError{Name: "working_hours", Value: o.WorkingHours, Reason: "must be in [0,24]"}
	}
	if o.WorkdayStart < 0 || o.WorkdayStart >= 24 || math.IsNaN(o.WorkdayStart) {
		return &model.ParamError{Name: "workday_start", Value: o.WorkdayStart, Reason: "must be in [0,24)"}
	}
	if o.SamplesPerDay <= 0 {
		return &model.ParamError{Name: "samples_per_day", Value: o.SamplesPerDay, Reason: "must be positive"}
	}
	if o.InitialCharge < 0 || o.InitialCharge > 1 || math.IsNaN(o.InitialCharge) {
		return &model.ParamError{Name: "initial_charge", Value: o.InitialCharge, Reason: "must be in [0,1]"}
	}
	return nil
}

// StepHours is the duration of one timestep.
func (o Options) StepHours() float64 { return 24 / float64(o.SamplesPerDay) }

// Working reports whether a step starting at hour falls inside the workday.
// A step counts as working when its start time lies in
// [WorkdayStart, WorkdayStart+WorkingHours), wrapping around midnight.
func (o Options) Working(hour float64) bool {
	if o.WorkingHours >= 24 {
		return true
	}
	if o.WorkingHours <= 0 {
		return false
	}
	rel := math.Mod(hour-o.WorkdayStart, 24)
	if rel < 0 {
		rel += 24
	}
	return rel < o.WorkingHours
}

// Simulator compiles Configurations against a catalog.
type Simulator struct {
	catalog *catalog.Catalog
	opts    Options
}

// New returns a Simulator after validating opts.
func New(cat *catalog.Catalog, opts Options) (*Simulator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{catalog: cat, opts: opts}, nil
}

// Options returns the simulator settings.
func (s *Simulator) Options() Options { return s.opts }

// Catalog returns the catalog used to resolve equipment.
func (s *Simulator) Catalog() *catalog.Catalog { return s.catalog }

// Run compiles cfg and simulates it over samples.
func (s *Simulator) Run(cfg model.Configuration, samples []model.EnvironmentSample) (model.SimulationTrace, error) {
	p, err := s.Compile(cfg)
	if err != nil {
		return model.SimulationTrace{}, err
	}
	return p.Run(samples), nil
}
