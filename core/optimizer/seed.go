package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/powermix/core/model"
)

// meanRate is the average power of a trace over all its steps.
func meanRate(t model.SimulationTrace, f func(model.TraceRecord) float64) float64 {
	if len(t.Records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range t.Records {
		sum += f(r)
	}
	return sum / float64(len(t.Records))
}

// waterRate is the mean output of a water producer over the steps in which
// its season lets it run, or rating when the trace has none.
func waterRate(t model.SimulationTrace, rating float64) float64 {
	var sum float64
	n := 0
	for _, r := range t.Records {
		if r.Season.WaterActive() {
			sum += r.Generation
			n++
		}
	}
	if n == 0 {
		return rating
	}
	return sum / float64(n)
}

// solveSeed sizes the producer counts with a linear program: minimize cost
// subject to expected generation covering expected demand, each count within
// its bounds. factors are the mean output of one unit.
func solveSeed(costs, factors []float64, bounds []Range, demand float64) ([]float64, error) {
	n := len(costs)
	g := mat.NewDense(1+2*n, n, nil)
	h := make([]float64, 1+2*n)
	for i := range costs {
		g.Set(0, i, -factors[i])
		g.Set(1+i, i, 1)
		h[1+i] = float64(bounds[i].Max)
		g.Set(1+n+i, i, -1)
		h[1+n+i] = -float64(bounds[i].Min)
	}
	h[0] = -demand

	cStd, aStd, bStd := lp.Convert(costs, g, h, nil, nil)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-9, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits each variable into positive and negative parts.
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lpSeed can be overridden in tests to simulate solver failures.
var lpSeed = solveSeed

// seedPoint builds the initial search point: every dimension at its lower
// bound, producer counts raised to the rounded-up LP solution when it exists.
func (s *search) seedPoint(required model.Configuration) point {
	p := s.lowerBounds()
	var idx []int
	for i, d := range s.dims {
		if d.producer {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return p
	}

	demandTrace, err := s.opt.eval.Replay(required, s.opt.opts.Seed, 0)
	if err != nil {
		s.opt.logger.Warnf("lp seed: demand estimate failed: %v", err)
		return p
	}
	demand := meanRate(demandTrace, func(r model.TraceRecord) float64 { return r.Consumption })
	if demand == 0 {
		return p
	}

	costs := make([]float64, len(idx))
	factors := make([]float64, len(idx))
	bounds := make([]Range, len(idx))
	for j, i := range idx {
		d := s.dims[i]
		spec, err := s.opt.catalog.Spec(d.id)
		if err != nil {
			s.opt.logger.Warnf("lp seed: %v", err)
			return p
		}
		tr, err := s.opt.eval.Replay(model.NewConfiguration(map[string]int{d.id: 1}), s.opt.opts.Seed, 0)
		if err != nil {
			s.opt.logger.Warnf("lp seed: output estimate for %s failed: %v", d.id, err)
			return p
		}
		costs[j] = spec.Cost
		factors[j] = meanRate(tr, func(r model.TraceRecord) float64 { return r.Generation })
		if share := s.opt.opts.WaterShare; share > 0 && spec.Kind == model.KindWater {
			factors[j] = waterRate(tr, spec.Power) * share
		}
		bounds[j] = d.bounds
	}

	x, err := lpSeed(costs, factors, bounds, demand)
	if err != nil {
		s.opt.logger.Warnf("lp seed failed, starting without producers: %v", err)
		return p
	}
	for j, i := range idx {
		p[i] = s.dims[i].bounds.clamp(int(math.Ceil(x[j] - 1e-6)))
	}
	s.opt.logger.Debugw("lp seed", map[string]any{"demand": demand, "point": fmt.Sprint(p)})
	return p
}
