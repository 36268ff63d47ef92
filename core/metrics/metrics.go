package metrics

import "time"

// EvaluationRecord describes one Monte Carlo evaluation of a candidate.
type EvaluationRecord struct {
	RunID     string
	Iteration int
	Walker    int
	Config    string // canonical configuration key
	Cost      float64
	Downtime  float64
	Surplus   float64
	Feasible  bool
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records evaluations for observability purposes.
type MetricsSink interface {
	RecordEvaluation(rec EvaluationRecord) error
}

// ImprovementRecord is emitted when the optimizer finds a new best.
type ImprovementRecord struct {
	RunID     string
	Iteration int
	Config    string
	Cost      float64
	Downtime  float64
	Feasible  bool
	Time      time.Time
}

// ImprovementRecorder records new best configurations.
type ImprovementRecorder interface {
	RecordImprovement(rec ImprovementRecord) error
}

// IterationRecord summarizes the search after one iteration.
type IterationRecord struct {
	RunID        string
	Iteration    int
	Evaluations  int
	BestCost     float64
	BestDowntime float64
	Feasible     bool
	Time         time.Time
}

// IterationRecorder records optimizer progress.
type IterationRecorder interface {
	RecordIteration(rec IterationRecord) error
}

// SimulationRecord is the outcome of evaluating one configuration directly.
type SimulationRecord struct {
	Config        string
	Runs          int
	Mean          float64
	P95           float64
	WorstFraction float64
	MeanSurplus   float64
	Duration      time.Duration
	Time          time.Time
}

// SimulationRecorder records standalone evaluations.
type SimulationRecorder interface {
	RecordSimulation(rec SimulationRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEvaluation(EvaluationRecord) error   { return nil }
func (NopSink) RecordImprovement(ImprovementRecord) error { return nil }
func (NopSink) RecordIteration(IterationRecord) error     { return nil }
func (NopSink) RecordSimulation(SimulationRecord) error   { return nil }
