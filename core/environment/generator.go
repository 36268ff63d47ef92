package environment

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/powermix/core/model"
)

// HoursPerDay is the length of a simulated day.
const HoursPerDay = 24

// Wind distribution names.
const (
	WindUniform     = "uniform"
	WindTruncNormal = "truncnormal"
)

const maxResample = 16

// WindModel describes how wind intensity is drawn.
type WindModel struct {
	// Distribution is "uniform" (on [Min,Max]) or "truncnormal" (Normal(Mean,
	// StdDev) restricted to [Min,Max]).
	Distribution string
	Min          float64
	Max          float64
	Mean         float64
	StdDev       float64
	// GustMinHours and GustMaxHours hold one wind draw for a random duration.
	// Zero keeps every timestep independent.
	GustMinHours int
	GustMaxHours int
}

// DefaultWind draws intensity uniformly on [0,1] at every timestep.
func DefaultWind() WindModel {
	return WindModel{Distribution: WindUniform, Min: 0, Max: 1, Mean: 0.5, StdDev: 0.25}
}

// Validate checks bounds and distribution parameters.
func (w WindModel) Validate() error {
	switch w.Distribution {
	case WindUniform:
	case WindTruncNormal:
		if !(w.StdDev > 0) {
			return &model.ParamError{Name: "wind.stddev", Value: w.StdDev, Reason: "must be positive"}
		}
	default:
		return &model.ParamError{Name: "wind.distribution", Value: w.Distribution, Reason: "must be uniform or truncnormal"}
	}
	if w.Min < 0 || w.Max > 1 || w.Min > w.Max {
		return &model.ParamError{Name: "wind.range", Value: [2]float64{w.Min, w.Max}, Reason: "must satisfy 0 <= min <= max <= 1"}
	}
	if w.GustMinHours < 0 || w.GustMaxHours < w.GustMinHours {
		return &model.ParamError{Name: "wind.gust_hours", Value: [2]int{w.GustMinHours, w.GustMaxHours}, Reason: "must satisfy 0 <= min <= max"}
	}
	return nil
}

// WaterModel describes the water flow reaching water producers.
type WaterModel struct {
	// MinFlow is the lower bound of the per-step flow fraction. 1 means full
	// rated flow at every step outside the dry season.
	MinFlow float64
}

// Validate checks the flow bound.
func (w WaterModel) Validate() error {
	if w.MinFlow < 0 || w.MinFlow > 1 {
		return &model.ParamError{Name: "water.min_flow", Value: w.MinFlow, Reason: "must be in [0,1]"}
	}
	return nil
}

// Options configures a Generator.
type Options struct {
	Calendar Calendar
	Wind     WindModel
	Water    WaterModel
}

// DefaultOptions returns the default calendar with uniform wind and full water flow.
func DefaultOptions() Options {
	return Options{Calendar: DefaultCalendar(), Wind: DefaultWind(), Water: WaterModel{MinFlow: 1}}
}

// Generator produces environment sequences. It holds no random state and is
// safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator validates opts and returns a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.Calendar.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Wind.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Water.Validate(); err != nil {
		return nil, err
	}
	cal := append(Calendar(nil), opts.Calendar...)
	opts.Calendar = cal
	return &Generator{opts: opts}, nil
}

// Calendar returns the season cycle used by the generator.
func (g *Generator) Calendar() Calendar { return append(Calendar(nil), g.opts.Calendar...) }

// Generate draws days*samplesPerDay samples from a PCG source seeded with
// (seed, stream). Identical arguments always give identical samples.
func (g *Generator) Generate(days, samplesPerDay int, seed, stream uint64) ([]model.EnvironmentSample, error) {
	return g.GenerateFrom(days, samplesPerDay, rand.NewPCG(seed, stream))
}

// GenerateFrom draws samples from src. src must not be shared with another
// goroutine while the call runs.
func (g *Generator) GenerateFrom(days, samplesPerDay int, src rand.Source) ([]model.EnvironmentSample, error) {
	if days < 0 {
		return nil, &model.ParamError{Name: "days", Value: days, Reason: "must not be negative"}
	}
	if samplesPerDay <= 0 {
		return nil, &model.ParamError{Name: "samples_per_day", Value: samplesPerDay, Reason: "must be positive"}
	}
	total := days * samplesPerDay
	out := make([]model.EnvironmentSample, total)
	if total == 0 {
		return out, nil
	}

	stepHours := float64(HoursPerDay) / float64(samplesPerDay)
	rng := rand.New(src)
	wind := g.windSampler(src)
	water := distuv.Uniform{Min: g.opts.Water.MinFlow, Max: 1, Src: src}

	var gust float64
	gustLeft := 0
	for i := range out {
		day := i / samplesPerDay
		season := g.opts.Calendar.SeasonOf(day)

		if gustLeft == 0 {
			gust = wind()
			gustLeft = g.gustSteps(rng, stepHours)
		}
		gustLeft--

		flow := 1.0
		if g.opts.Water.MinFlow < 1 {
			flow = water.Rand()
		}
		if !season.WaterActive() {
			flow = 0
		}

		out[i] = model.EnvironmentSample{
			Step:      i,
			Day:       day,
			Hour:      float64(i%samplesPerDay) * stepHours,
			Season:    season,
			Wind:      gust,
			WaterFlow: flow,
		}
	}
	return out, nil
}

// gustSteps returns how many steps the next wind draw is held for.
func (g *Generator) gustSteps(rng *rand.Rand, stepHours float64) int {
	w := g.opts.Wind
	if w.GustMaxHours == 0 {
		return 1
	}
	hours := w.GustMinHours + rng.IntN(w.GustMaxHours-w.GustMinHours+1)
	steps := int(math.Ceil(float64(hours) / stepHours))
	if steps < 1 {
		steps = 1
	}
	return steps
}

func (g *Generator) windSampler(src rand.Source) func() float64 {
	w := g.opts.Wind
	if w.Distribution == WindTruncNormal {
		n := distuv.Normal{Mu: w.Mean, Sigma: w.StdDev, Src: src}
		return func() float64 {
			for i := 0; i < maxResample; i++ {
				if v := n.Rand(); v >= w.Min && v <= w.Max {
					return v
				}
			}
			return clamp(n.Rand(), w.Min, w.Max)
		}
	}
	u := distuv.Uniform{Min: w.Min, Max: w.Max, Src: src}
	return func() float64 { return clamp(u.Rand(), w.Min, w.Max) }
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
