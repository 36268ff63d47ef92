package simulation

import (
	"github.com/kilianp07/powermix/core/model"
)

type windGroup struct {
	rating float64 // count * rated output
	cutIn  float64
}

// Plan is a Configuration resolved against the catalog: producer ratings
// grouped by weather response, total consumer draw and battery capacity.
// A Plan is read-only and can be run from many goroutines at once.
type Plan struct {
	wind     []windGroup
	water    float64
	crank    float64
	demand   float64
	capacity float64
	opts     Options
}

// Compile validates cfg and resolves it into a Plan.
func (s *Simulator) Compile(cfg model.Configuration) (*Plan, error) {
	if err := s.catalog.Validate(cfg); err != nil {
		return nil, err
	}
	capacity, err := s.catalog.Capacity(cfg)
	if err != nil {
		return nil, err
	}
	p := &Plan{capacity: capacity, opts: s.opts}
	for _, id := range cfg.IDs() {
		spec, err := s.catalog.Spec(id)
		if err != nil {
			return nil, err
		}
		n := float64(cfg.Count(id))
		if n == 0 {
			continue
		}
		switch {
		case spec.IsConsumer():
			p.demand += n * spec.Power
		case spec.IsProducer():
			switch spec.Kind {
			case model.KindWind:
				p.wind = append(p.wind, windGroup{rating: n * spec.Power, cutIn: spec.CutIn})
			case model.KindWater:
				p.water += n * spec.Power
			case model.KindCrank:
				p.crank += n * spec.Power
			}
		}
	}
	return p, nil
}

// Capacity is the total battery storage of the plan.
func (p *Plan) Capacity() float64 { return p.capacity }

// Demand is the draw of all consumers while working.
func (p *Plan) Demand() float64 { return p.demand }

// Generation returns the instantaneous output for one sample.
func (p *Plan) Generation(s model.EnvironmentSample, working bool) float64 {
	var g float64
	wind := s.Wind
	if wind > 1 {
		wind = 1
	}
	for _, w := range p.wind {
		if wind > w.cutIn && wind > 0 {
			g += w.rating * wind
		}
	}
	if s.Season.WaterActive() && s.WaterFlow > 0 {
		flow := s.WaterFlow
		if flow > 1 {
			flow = 1
		}
		g += p.water * flow
	}
	if working {
		g += p.crank
	}
	return g
}

// Run simulates the plan over samples. An empty sequence yields an empty
// trace whose downtime fraction is 0.
func (p *Plan) Run(samples []model.EnvironmentSample) model.SimulationTrace {
	dt := p.opts.StepHours()
	trace := model.SimulationTrace{
		Records:   make([]model.TraceRecord, len(samples)),
		Capacity:  p.capacity,
		StepHours: dt,
	}
	level := p.capacity * p.opts.InitialCharge

	for i, s := range samples {
		working := p.opts.Working(s.Hour)
		gen := p.Generation(s, working)
		var cons float64
		if working {
			cons = p.demand
		}
		net := gen - cons

		rec := model.TraceRecord{
			Step:        s.Step,
			Day:         s.Day,
			Hour:        s.Hour,
			Season:      s.Season,
			Working:     working,
			Generation:  gen,
			Consumption: cons,
			Net:         net,
		}
		if net >= 0 {
			// surplus beyond capacity is lost
			level += min(net*dt, p.capacity-level)
		} else {
			need := -net * dt
			drawn := min(need, level)
			level -= drawn
			if short := need - drawn; short > 0 {
				rec.Deficit = true
				rec.Unmet = short
			}
		}
		level = max(0, min(level, p.capacity))
		rec.Battery = level
		trace.Records[i] = rec
	}
	return trace
}
