package model

// TraceRecord is the power balance of a single timestep.
type TraceRecord struct {
	Step        int
	Day         int
	Hour        float64
	Season      Season
	Working     bool
	Generation  float64 // units/hour
	Consumption float64 // units/hour
	Net         float64 // Generation - Consumption
	Battery     float64 // stored energy at the end of the step
	Deficit     bool
	Unmet       float64 // energy not delivered during the step, >= 0
}

// SimulationTrace is the full record of one simulation run.
type SimulationTrace struct {
	Records   []TraceRecord
	Capacity  float64
	StepHours float64
}

// WorkingSteps counts steps inside working hours.
func (t SimulationTrace) WorkingSteps() int {
	n := 0
	for _, r := range t.Records {
		if r.Working {
			n++
		}
	}
	return n
}

// DeficitSteps counts working steps where demand was not met.
func (t SimulationTrace) DeficitSteps() int {
	n := 0
	for _, r := range t.Records {
		if r.Working && r.Deficit {
			n++
		}
	}
	return n
}

// DowntimeFraction is the share of working-hour steps that were unpowered.
// A trace without working steps has nothing to fail and reports 0.
func (t SimulationTrace) DowntimeFraction() float64 {
	working := t.WorkingSteps()
	if working == 0 {
		return 0
	}
	return float64(t.DeficitSteps()) / float64(working)
}

// UnmetEnergy sums the shortfall over the whole run.
func (t SimulationTrace) UnmetEnergy() float64 {
	var sum float64
	for _, r := range t.Records {
		sum += r.Unmet
	}
	return sum
}

// EnergySurplus is generated minus consumed energy over the run.
func (t SimulationTrace) EnergySurplus() float64 {
	var sum float64
	for _, r := range t.Records {
		sum += r.Net * t.StepHours
	}
	return sum
}
