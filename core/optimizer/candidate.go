package optimizer

import (
	"cmp"
	"slices"

	"github.com/kilianp07/powermix/core/model"
)

// Candidate is one scored configuration.
type Candidate struct {
	Config   model.Configuration
	Stats    model.DowntimeStatistics
	Cost     float64
	Downtime float64 // Stats at the optimizer's percentile
	Feasible bool
}

// Units is the total number of equipment units in the configuration.
func (c Candidate) Units() int { return c.Config.TotalUnits() }

// compare orders candidates best first. Feasible beats infeasible. Among
// infeasible candidates lower downtime wins, after surplus when it is
// required. Remaining ties go to lower cost, then fewer units.
func compare(a, b Candidate, requireSurplus bool) int {
	if a.Feasible != b.Feasible {
		if a.Feasible {
			return -1
		}
		return 1
	}
	if !a.Feasible {
		if requireSurplus {
			as, bs := min(a.Stats.MeanSurplus, 0), min(b.Stats.MeanSurplus, 0)
			if c := cmp.Compare(bs, as); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(a.Downtime, b.Downtime); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
		return c
	}
	return cmp.Compare(a.Units(), b.Units())
}

// Result is the outcome of one optimization.
type Result struct {
	RunID string
	// Best is the cheapest feasible configuration, or the one closest to
	// feasibility when Feasible is false.
	Best        model.Configuration
	Stats       model.DowntimeStatistics
	Cost        float64
	Downtime    float64
	Feasible    bool
	Iterations  int
	Evaluations int
	// History holds every distinct configuration evaluated, in order.
	History []Candidate

	requireSurplus bool
}

// Ranked returns up to n feasible candidates from the history, cheapest
// first. n <= 0 returns all of them.
func (r *Result) Ranked(n int) []Candidate {
	var out []Candidate
	seen := make(map[string]bool, len(r.History))
	for _, c := range r.History {
		key := c.Config.Key()
		if !c.Feasible || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if c := compare(a, b, r.requireSurplus); c != 0 {
			return c
		}
		return cmp.Compare(a.Config.Key(), b.Config.Key())
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
