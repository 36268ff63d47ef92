// Package optimizer searches for the cheapest grid configuration whose
// downtime stays below a threshold.
package optimizer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/events"
	"github.com/kilianp07/powermix/core/logger"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/internal/eventbus"
)

// mutationStream separates the search randomness from the environment
// streams, which are indexed by run.
const mutationStream = 0x6f7074

// Evaluator scores configurations. *montecarlo.Runner implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, cfg model.Configuration, seed uint64) (model.DowntimeStatistics, error)
	Replay(cfg model.Configuration, seed uint64, run int) (model.SimulationTrace, error)
}

// Optimizer runs the local search.
type Optimizer struct {
	catalog *catalog.Catalog
	eval    Evaluator
	opts    Options
	bus     eventbus.EventBus
	logger  logger.Logger
}

// New validates opts against the catalog. bus and log may be nil.
func New(cat *catalog.Catalog, eval Evaluator, opts Options, bus eventbus.EventBus, log logger.Logger) (*Optimizer, error) {
	if cat == nil || eval == nil {
		return nil, fmt.Errorf("optimizer: catalog and evaluator are required")
	}
	if err := opts.validate(cat); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Optimizer{catalog: cat, eval: eval, opts: opts, bus: bus, logger: log}, nil
}

// Options returns the search settings.
func (o *Optimizer) Options() Options { return o.opts }

type dim struct {
	id       string
	height   bool
	producer bool
	bounds   Range
}

// point holds one value per search dimension.
type point []int

type search struct {
	opt      *Optimizer
	required model.Configuration
	dims     []dim
	heightOf map[string]int
	rng      *rand.Rand
	cache    map[string]Candidate
	result   *Result
	hasBest  bool
}

func (o *Optimizer) newSearch(required model.Configuration) *search {
	s := &search{
		opt:      o,
		required: required,
		heightOf: make(map[string]int),
		rng:      rand.New(rand.NewPCG(o.opts.Seed, mutationStream)),
		cache:    make(map[string]Candidate),
	}
	ids := make([]string, 0, len(o.opts.Bounds))
	for id, r := range o.opts.Bounds {
		if r.Max > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	var batteries []string
	for _, id := range ids {
		spec, _ := o.catalog.Spec(id)
		s.dims = append(s.dims, dim{id: id, producer: spec.IsProducer(), bounds: o.opts.Bounds[id]})
		if spec.IsBattery() {
			batteries = append(batteries, id)
		}
	}
	for _, id := range batteries {
		s.heightOf[id] = len(s.dims)
		s.dims = append(s.dims, dim{id: id, height: true, bounds: o.opts.HeightRange})
	}
	return s
}

func (s *search) lowerBounds() point {
	p := make(point, len(s.dims))
	for i, d := range s.dims {
		p[i] = d.bounds.Min
	}
	return p
}

func (s *search) randomPoint() point {
	p := make(point, len(s.dims))
	for i, d := range s.dims {
		p[i] = d.bounds.Min + s.rng.IntN(d.bounds.Max-d.bounds.Min+1)
	}
	return p
}

// config turns a point into a Configuration on top of the required consumers.
// Heights of absent batteries are dropped so equal grids share one key.
func (s *search) config(p point) model.Configuration {
	cfg := s.required
	for i, d := range s.dims {
		if d.height || p[i] == 0 {
			continue
		}
		cfg = cfg.With(d.id, p[i])
		if h, ok := s.heightOf[d.id]; ok {
			cfg = cfg.WithHeight(d.id, float64(p[h]))
		}
	}
	return cfg
}

// neighbor moves one dimension by one step. Infeasible candidates mostly
// grow, feasible ones mostly shrink.
func (s *search) neighbor(p point, cur Candidate) point {
	q := slices.Clone(p)
	if len(s.dims) == 0 {
		return q
	}
	grow, bias := !cur.Feasible, 0.8
	choices := make([]int, 0, len(s.dims))
	if s.opt.opts.RequireSurplus && cur.Stats.MeanSurplus < 0 {
		bias = 0.9
		for i, d := range s.dims {
			if d.producer {
				choices = append(choices, i)
			}
		}
	}
	if len(choices) == 0 {
		for i := range s.dims {
			choices = append(choices, i)
		}
	}
	i := choices[s.rng.IntN(len(choices))]
	delta := s.opt.opts.Step
	if !grow {
		delta = -delta
	}
	if s.rng.Float64() >= bias {
		delta = -delta
	}
	q[i] = s.dims[i].bounds.clamp(q[i] + delta)
	return q
}

// evaluate scores p, reusing earlier results for identical configurations.
func (s *search) evaluate(ctx context.Context, p point, iteration, walker int) (Candidate, error) {
	cfg := s.config(p)
	key := cfg.Key()
	if c, ok := s.cache[key]; ok {
		return c, nil
	}
	start := time.Now()
	stats, err := s.opt.eval.Evaluate(ctx, cfg, s.opt.opts.Seed)
	if err != nil {
		return Candidate{}, err
	}
	cost, err := s.opt.catalog.Cost(cfg)
	if err != nil {
		return Candidate{}, err
	}
	c := Candidate{Config: cfg, Stats: stats, Cost: cost, Downtime: stats.Percentile(s.opt.opts.Percentile)}
	c.Feasible = c.Downtime < s.opt.opts.Threshold && (!s.opt.opts.RequireSurplus || stats.MeanSurplus >= 0)
	s.cache[key] = c
	s.result.Evaluations++
	s.result.History = append(s.result.History, c)
	s.publish(events.EvaluationEvent{
		RunID:     s.result.RunID,
		Iteration: iteration,
		Walker:    walker,
		Config:    cfg,
		Cost:      cost,
		Downtime:  c.Downtime,
		Surplus:   stats.MeanSurplus,
		Feasible:  c.Feasible,
		Duration:  time.Since(start),
	})
	return c, nil
}

func (s *search) publish(e eventbus.Event) {
	if s.opt.bus != nil {
		s.opt.bus.Publish(e)
	}
}

func (s *search) offer(c Candidate, iteration int) {
	r := s.result
	best := Candidate{Config: r.Best, Stats: r.Stats, Cost: r.Cost, Downtime: r.Downtime, Feasible: r.Feasible}
	if s.hasBest && compare(c, best, s.opt.opts.RequireSurplus) >= 0 {
		return
	}
	s.hasBest = true
	r.Best, r.Stats, r.Cost, r.Downtime, r.Feasible = c.Config, c.Stats, c.Cost, c.Downtime, c.Feasible
	s.publish(events.ImprovementEvent{
		RunID:     r.RunID,
		Iteration: iteration,
		Config:    c.Config,
		Cost:      c.Cost,
		Downtime:  c.Downtime,
		Feasible:  c.Feasible,
	})
	s.opt.logger.Debugw("new best", map[string]any{
		"iteration": iteration,
		"config":    c.Config.Key(),
		"cost":      c.Cost,
		"downtime":  c.Downtime,
		"feasible":  c.Feasible,
	})
}

// Optimize searches configurations that power the consumers in required.
// Running out of iterations is not an error: the result reports the best
// configuration found and whether it is feasible. When ctx is cancelled the
// best result so far is returned together with the context error.
func (o *Optimizer) Optimize(ctx context.Context, required model.Configuration) (*Result, error) {
	for _, id := range required.IDs() {
		spec, err := o.catalog.Spec(id)
		if err != nil {
			return nil, err
		}
		if !spec.IsConsumer() {
			return nil, &model.ConfigError{ID: id, Field: "category", Value: spec.Category.String(), Reason: "required set may only hold consumers"}
		}
	}
	if err := o.catalog.Validate(required); err != nil {
		return nil, err
	}

	s := o.newSearch(required)
	s.result = &Result{RunID: uuid.NewString(), requireSurplus: o.opts.RequireSurplus}
	o.logger.Infof("optimization %s: %d dimensions, %d walkers, %d iterations", s.result.RunID, len(s.dims), o.opts.Walkers, o.opts.Iterations)

	points := make([]point, o.opts.Walkers)
	current := make([]Candidate, o.opts.Walkers)
	for w := range points {
		if w == 0 {
			points[w] = s.seedPoint(required)
		} else {
			points[w] = s.randomPoint()
		}
		c, err := s.evaluate(ctx, points[w], 0, w)
		if err != nil {
			return s.abort(err)
		}
		current[w] = c
		s.offer(c, 0)
	}

	for it := 1; it <= o.opts.Iterations; it++ {
		for w := range points {
			q := s.neighbor(points[w], current[w])
			c, err := s.evaluate(ctx, q, it, w)
			if err != nil {
				return s.abort(err)
			}
			if compare(c, current[w], o.opts.RequireSurplus) <= 0 {
				points[w], current[w] = q, c
			}
			// Walkers move on ties, the global best keeps the first of equals.
			s.offer(c, it)
		}
		s.result.Iterations = it
		s.publish(events.IterationEvent{
			RunID:        s.result.RunID,
			Iteration:    it,
			Evaluations:  s.result.Evaluations,
			BestCost:     s.result.Cost,
			BestDowntime: s.result.Downtime,
			Feasible:     s.result.Feasible,
		})
	}

	if !s.result.Feasible {
		o.logger.Warnf("optimization %s: no configuration met the downtime threshold %.3f (best %.3f)", s.result.RunID, o.opts.Threshold, s.result.Downtime)
	} else {
		o.logger.Infof("optimization %s: best cost %.1f downtime %.3f after %d evaluations", s.result.RunID, s.result.Cost, s.result.Downtime, s.result.Evaluations)
	}
	return s.result, nil
}

// abort returns the best result so far when the search was interrupted after
// at least one evaluation.
func (s *search) abort(err error) (*Result, error) {
	err = fmt.Errorf("optimizer: %w", err)
	if s.result.Evaluations == 0 {
		return nil, err
	}
	return s.result, err
}
