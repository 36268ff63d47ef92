package events

import "github.com/kilianp07/powermix/core/model"

// ImprovementEvent is emitted when a candidate replaces the global best.
type ImprovementEvent struct {
	RunID     string
	Iteration int
	Config    model.Configuration
	Cost      float64
	Downtime  float64
	Feasible  bool
}

// IterationEvent closes one optimizer iteration.
type IterationEvent struct {
	RunID        string
	Iteration    int
	Evaluations  int // Monte Carlo evaluations so far
	BestCost     float64
	BestDowntime float64
	Feasible     bool
}
