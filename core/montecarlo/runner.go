// Package montecarlo evaluates a Configuration over many independently
// sampled environments and summarizes the resulting downtime.
package montecarlo

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powermix/core/environment"
	"github.com/kilianp07/powermix/core/logger"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/simulation"
)

// Options sizes an evaluation.
type Options struct {
	Days          int
	SamplesPerDay int
	Runs          int
	// Workers bounds concurrent runs. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions mirrors the defaults of the command line tool.
func DefaultOptions() Options {
	return Options{Days: 132, SamplesPerDay: 24, Runs: 1000}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Days <= 0 {
		return &model.ParamError{Name: "days", Value: o.Days, Reason: "must be positive"}
	}
	if o.SamplesPerDay <= 0 {
		return &model.ParamError{Name: "samples_per_day", Value: o.SamplesPerDay, Reason: "must be positive"}
	}
	if o.Runs < 1 {
		return &model.ParamError{Name: "runs", Value: o.Runs, Reason: "must be at least 1"}
	}
	if o.Workers < 0 {
		return &model.ParamError{Name: "workers", Value: o.Workers, Reason: "must not be negative"}
	}
	return nil
}

// Runner evaluates configurations. It is safe for concurrent use.
type Runner struct {
	sim    *simulation.Simulator
	gen    *environment.Generator
	opts   Options
	logger logger.Logger
}

// NewRunner validates opts and returns a Runner. The simulator's samples per
// day must match opts.SamplesPerDay so the timestep length agrees.
func NewRunner(sim *simulation.Simulator, gen *environment.Generator, opts Options, log logger.Logger) (*Runner, error) {
	if sim == nil || gen == nil {
		return nil, fmt.Errorf("montecarlo: simulator and generator are required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if spd := sim.Options().SamplesPerDay; spd != opts.SamplesPerDay {
		return nil, &model.ParamError{Name: "samples_per_day", Value: opts.SamplesPerDay,
			Reason: fmt.Sprintf("simulator uses %d samples per day", spd)}
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{sim: sim, gen: gen, opts: opts, logger: log}, nil
}

// Options returns the effective options.
func (r *Runner) Options() Options { return r.opts }

// Simulator returns the simulator used for every run.
func (r *Runner) Simulator() *simulation.Simulator { return r.sim }

type runResult struct {
	fraction float64
	surplus  float64
}

// Evaluate simulates cfg Runs times. Run i draws its environment from the
// stream (seed, i), so the result depends only on cfg, seed and the options,
// never on the number of workers.
func (r *Runner) Evaluate(ctx context.Context, cfg model.Configuration, seed uint64) (model.DowntimeStatistics, error) {
	plan, err := r.sim.Compile(cfg)
	if err != nil {
		return model.DowntimeStatistics{}, err
	}

	results := make([]runResult, r.opts.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range results {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples, err := r.gen.Generate(r.opts.Days, r.opts.SamplesPerDay, seed, uint64(i))
			if err != nil {
				return err
			}
			trace := plan.Run(samples)
			results[i] = runResult{fraction: trace.DowntimeFraction(), surplus: trace.EnergySurplus()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.DowntimeStatistics{}, fmt.Errorf("montecarlo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return model.DowntimeStatistics{}, fmt.Errorf("montecarlo: %w", err)
	}

	fractions := make([]float64, len(results))
	surpluses := make([]float64, len(results))
	for i, res := range results {
		fractions[i] = res.fraction
		surpluses[i] = res.surplus
	}
	stats := model.NewDowntimeStatistics(fractions, surpluses)
	r.logger.Debugw("evaluation complete", map[string]any{
		"config": cfg.Key(),
		"runs":   stats.Runs,
		"mean":   stats.Mean,
		"p95":    stats.P95(),
	})
	return stats, nil
}

// Replay regenerates the trace of a single run of a previous Evaluate call
// with the same seed.
func (r *Runner) Replay(cfg model.Configuration, seed uint64, run int) (model.SimulationTrace, error) {
	if run < 0 || run >= r.opts.Runs {
		return model.SimulationTrace{}, &model.ParamError{Name: "run", Value: run, Reason: fmt.Sprintf("must be in [0,%d)", r.opts.Runs)}
	}
	samples, err := r.gen.Generate(r.opts.Days, r.opts.SamplesPerDay, seed, uint64(run))
	if err != nil {
		return model.SimulationTrace{}, err
	}
	return r.sim.Run(cfg, samples)
}
