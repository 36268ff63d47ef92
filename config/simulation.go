package config

import (
	"github.com/kilianp07/powermix/core/montecarlo"
	"github.com/kilianp07/powermix/core/simulation"
)

// SimulationConfig sizes the Monte Carlo evaluation and the workday.
type SimulationConfig struct {
	Days          int     `json:"days"`
	SamplesPerDay int     `json:"samples_per_day"`
	Runs          int     `json:"runs"`
	Workers       int     `json:"workers"`
	WorkingHours  float64 `json:"working_hours"`
	WorkdayStart  float64 `json:"workday_start"`
	// InitialCharge is a pointer so that an explicit 0 (empty batteries)
	// survives SetDefaults.
	InitialCharge *float64 `json:"initial_charge"`
	Seed          uint64   `json:"seed"`
}

// SetDefaults applies the command line defaults to unset fields.
func (c *SimulationConfig) SetDefaults() {
	mc := montecarlo.DefaultOptions()
	sim := simulation.DefaultOptions()
	if c.Days == 0 {
		c.Days = mc.Days
	}
	if c.SamplesPerDay == 0 {
		c.SamplesPerDay = mc.SamplesPerDay
	}
	if c.Runs == 0 {
		c.Runs = mc.Runs
	}
	if c.WorkingHours == 0 {
		c.WorkingHours = sim.WorkingHours
	}
	if c.InitialCharge == nil {
		v := sim.InitialCharge
		c.InitialCharge = &v
	}
}

// SimulatorOptions converts the section for the simulator.
func (c SimulationConfig) SimulatorOptions() simulation.Options {
	opts := simulation.Options{
		WorkingHours:  c.WorkingHours,
		WorkdayStart:  c.WorkdayStart,
		SamplesPerDay: c.SamplesPerDay,
	}
	if c.InitialCharge != nil {
		opts.InitialCharge = *c.InitialCharge
	}
	return opts
}

// RunnerOptions converts the section for the Monte Carlo runner.
func (c SimulationConfig) RunnerOptions() montecarlo.Options {
	return montecarlo.Options{Days: c.Days, SamplesPerDay: c.SamplesPerDay, Runs: c.Runs, Workers: c.Workers}
}

// Validate checks the ranges of both option sets.
func (c SimulationConfig) Validate() error {
	if err := c.SimulatorOptions().Validate(); err != nil {
		return err
	}
	return c.RunnerOptions().Validate()
}
