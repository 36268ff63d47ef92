package events

import (
	"time"

	"github.com/kilianp07/powermix/core/model"
)

// EvaluationEvent is published after the Monte Carlo runner scored a
// candidate. Cached candidates are not reported again.
type EvaluationEvent struct {
	RunID     string
	Iteration int
	Walker    int
	Config    model.Configuration
	Cost      float64
	Downtime  float64 // downtime fraction at the optimizer's percentile
	Surplus   float64
	Feasible  bool
	Duration  time.Duration
}
