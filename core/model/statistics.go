package model

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DowntimeStatistics aggregates the downtime fractions of many runs of one
// Configuration.
type DowntimeStatistics struct {
	Runs          int
	Fractions     []float64 // sorted ascending
	Mean          float64
	WorstRun      int // index of the run with the highest fraction
	WorstFraction float64
	MeanSurplus   float64 // mean generated-minus-consumed energy per run
}

// NewDowntimeStatistics builds statistics from per-run fractions and
// surpluses, both indexed by run. fractions is not modified.
func NewDowntimeStatistics(fractions, surpluses []float64) DowntimeStatistics {
	s := DowntimeStatistics{Runs: len(fractions)}
	if len(fractions) == 0 {
		return s
	}
	for i, f := range fractions {
		if i == 0 || f > s.WorstFraction {
			s.WorstRun = i
			s.WorstFraction = f
		}
	}
	s.Fractions = append([]float64(nil), fractions...)
	sort.Float64s(s.Fractions)
	s.Mean = stat.Mean(s.Fractions, nil)
	if len(surpluses) > 0 {
		s.MeanSurplus = stat.Mean(surpluses, nil)
	}
	return s
}

// Percentile returns the empirical p-quantile (p in [0,1]) of the fractions.
// p is clamped to [0,1]; empty statistics report 0.
func (s DowntimeStatistics) Percentile(p float64) float64 {
	if len(s.Fractions) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, s.Fractions, nil)
}

// P95 is the downtime fraction exceeded by only 5% of runs.
func (s DowntimeStatistics) P95() float64 { return s.Percentile(0.95) }
