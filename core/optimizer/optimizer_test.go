package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/environment"
	"github.com/kilianp07/powermix/core/events"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/montecarlo"
	"github.com/kilianp07/powermix/core/simulation"
	"github.com/kilianp07/powermix/internal/eventbus"
)

func newRunner(t *testing.T) *montecarlo.Runner {
	t.Helper()
	sim, err := simulation.New(catalog.Default(), simulation.DefaultOptions())
	require.NoError(t, err)
	gen, err := environment.NewGenerator(environment.DefaultOptions())
	require.NoError(t, err)
	r, err := montecarlo.NewRunner(sim, gen, montecarlo.Options{Days: 20, SamplesPerDay: 24, Runs: 30}, nil)
	require.NoError(t, err)
	return r
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Iterations = 40
	opts.Walkers = 3
	opts.Seed = 7
	opts.Bounds = map[string]Range{
		catalog.PowerWheel:    {0, 4},
		catalog.LargeWindmill: {0, 3},
	}
	return opts
}

var lumber = model.NewConfiguration(map[string]int{catalog.LumberMill: 1})

func TestOptimize_BeatsManualReference(t *testing.T) {
	runner := newRunner(t)
	opt, err := New(catalog.Default(), runner, smallOptions(), nil, nil)
	require.NoError(t, err)

	// two power wheels always cover a lumber mill
	ref := lumber.With(catalog.PowerWheel, 2)
	refStats, err := runner.Evaluate(context.Background(), ref, 7)
	require.NoError(t, err)
	require.Less(t, refStats.P95(), 0.05)
	refCost, err := catalog.Default().Cost(ref)
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background(), lumber)
	require.NoError(t, err)
	assert.True(t, res.Feasible)
	assert.LessOrEqual(t, res.Cost, refCost)
	assert.Less(t, res.Downtime, 0.05)
	assert.Equal(t, 1, res.Best.Count(catalog.LumberMill))
	assert.Equal(t, 40, res.Iterations)
	assert.NotEmpty(t, res.RunID)
	assert.LessOrEqual(t, res.Evaluations, 3+40*3)
	assert.Len(t, res.History, res.Evaluations)
}

func TestOptimize_Infeasible(t *testing.T) {
	opts := smallOptions()
	opts.Iterations = 5
	opts.Bounds = map[string]Range{catalog.WaterWheel: {0, 1}}
	opt, err := New(catalog.Default(), newRunner(t), opts, nil, nil)
	require.NoError(t, err)

	// one water wheel never covers a steel factory
	res, err := opt.Optimize(context.Background(), model.NewConfiguration(map[string]int{catalog.SteelFactory: 1}))
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.GreaterOrEqual(t, res.Downtime, 0.05)
	assert.Empty(t, res.Ranked(0))
}

func TestOptimize_Deterministic(t *testing.T) {
	runner := newRunner(t)
	opts := smallOptions()
	opts.Iterations = 10

	a, err := mustNew(t, runner, opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	b, err := mustNew(t, runner, opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	assert.Equal(t, a.Best.Key(), b.Best.Key())
	assert.Equal(t, a.Cost, b.Cost)
	assert.Equal(t, a.Evaluations, b.Evaluations)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func mustNew(t *testing.T, eval Evaluator, opts Options) *Optimizer {
	t.Helper()
	o, err := New(catalog.Default(), eval, opts, nil, nil)
	require.NoError(t, err)
	return o
}

func TestOptimize_StaysInBounds(t *testing.T) {
	opts := smallOptions()
	opts.Bounds = map[string]Range{
		catalog.Windmill:       {1, 2},
		catalog.GravityBattery: {0, 2},
	}
	opts.HeightRange = Range{2, 3}
	opts.Iterations = 15
	res, err := mustNew(t, newRunner(t), opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	for _, c := range res.History {
		assert.Zero(t, c.Config.Count(catalog.PowerWheel))
		assert.Zero(t, c.Config.Count(catalog.LargeWindmill))
		assert.GreaterOrEqual(t, c.Config.Count(catalog.Windmill), 1)
		assert.LessOrEqual(t, c.Config.Count(catalog.Windmill), 2)
		if c.Config.Count(catalog.GravityBattery) > 0 {
			h := c.Config.UniformHeight(catalog.GravityBattery)
			assert.GreaterOrEqual(t, h, 2.0)
			assert.LessOrEqual(t, h, 3.0)
		}
	}
}

func TestOptimize_LPFailureFallsBack(t *testing.T) {
	orig := lpSeed
	lpSeed = func([]float64, []float64, []Range, float64) ([]float64, error) {
		return nil, errors.New("boom")
	}
	t.Cleanup(func() { lpSeed = orig })

	opts := smallOptions()
	opts.Walkers = 1
	opts.Iterations = 0
	res, err := mustNew(t, newRunner(t), opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	assert.Equal(t, lumber.Key(), res.Best.Key())
	assert.Equal(t, 1.0, res.Downtime)
}

func TestOptimize_SeedScalesWaterByShare(t *testing.T) {
	var factors []float64
	orig := lpSeed
	lpSeed = func(c, f []float64, b []Range, d float64) ([]float64, error) {
		factors = append([]float64(nil), f...)
		return orig(c, f, b, d)
	}
	t.Cleanup(func() { lpSeed = orig })

	opts := smallOptions()
	opts.Walkers = 1
	opts.Iterations = 0
	opts.Bounds = map[string]Range{catalog.WaterWheel: {0, 5}}
	runner := newRunner(t)

	// 20 days of the default calendar: 3 wet days then dry
	_, err := mustNew(t, runner, opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	require.Len(t, factors, 1)
	assert.InDelta(t, 150*3.0/20, factors[0], 1e-9)

	opts.WaterShare = environment.DefaultCalendar().WaterShare()
	_, err = mustNew(t, runner, opts).Optimize(context.Background(), lumber)
	require.NoError(t, err)
	require.Len(t, factors, 1)
	assert.InDelta(t, 150*36.0/66, factors[0], 1e-9)
}

func TestOptimize_PublishesEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	opts := smallOptions()
	opts.Walkers = 1
	opts.Iterations = 1
	opt, err := New(catalog.Default(), newRunner(t), opts, bus, nil)
	require.NoError(t, err)
	res, err := opt.Optimize(context.Background(), lumber)
	require.NoError(t, err)

	first := <-sub
	ev, ok := first.(events.EvaluationEvent)
	require.True(t, ok)
	assert.Equal(t, res.RunID, ev.RunID)
	assert.IsType(t, events.ImprovementEvent{}, <-sub)
}

func TestOptimize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := mustNew(t, newRunner(t), smallOptions()).Optimize(ctx, lumber)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimize_RequiredMustBeConsumers(t *testing.T) {
	opt := mustNew(t, newRunner(t), smallOptions())
	_, err := opt.Optimize(context.Background(), lumber.With(catalog.Windmill, 1))
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = opt.Optimize(context.Background(), model.NewConfiguration(map[string]int{"reactor": 1}))
	assert.ErrorIs(t, err, model.ErrUnknownEquipment)
}

func TestNew_InvalidOptions(t *testing.T) {
	runner := newRunner(t)
	cases := map[string]func(*Options){
		"walkers":   func(o *Options) { o.Walkers = 0 },
		"threshold": func(o *Options) { o.Threshold = 0 },
		"step":      func(o *Options) { o.Step = 0 },
		"water":     func(o *Options) { o.WaterShare = 1.5 },
		"height":    func(o *Options) { o.HeightRange = Range{0, 3} },
		"consumer":  func(o *Options) { o.Bounds = map[string]Range{catalog.LumberMill: {0, 1}} },
		"range":     func(o *Options) { o.Bounds = map[string]Range{catalog.Windmill: {3, 1}} },
	}
	for name, mutate := range cases {
		opts := smallOptions()
		mutate(&opts)
		_, err := New(catalog.Default(), runner, opts, nil, nil)
		assert.ErrorIs(t, err, model.ErrInvalidParameter, name)
	}

	opts := smallOptions()
	opts.Bounds = map[string]Range{"reactor": {0, 1}}
	_, err := New(catalog.Default(), runner, opts, nil, nil)
	assert.ErrorIs(t, err, model.ErrUnknownEquipment)
}

func TestSolveSeed(t *testing.T) {
	x, err := solveSeed([]float64{50, 75}, []float64{100.0 / 3, 144}, []Range{{0, 20}, {0, 30}}, 100.0/3)
	require.NoError(t, err)
	assert.InDelta(t, 0, x[0], 1e-6)
	assert.InDelta(t, 100.0/3/144, x[1], 1e-6)

	x, err = solveSeed([]float64{50, 75}, []float64{100.0 / 3, 144}, []Range{{1, 20}, {0, 30}}, 100.0/3)
	require.NoError(t, err)
	assert.InDelta(t, 1, x[0], 1e-6)
	assert.InDelta(t, 0, x[1], 1e-6)

	_, err = solveSeed([]float64{50}, []float64{0}, []Range{{0, 5}}, 10)
	assert.Error(t, err)
}

func TestResult_Ranked(t *testing.T) {
	a := model.NewConfiguration(map[string]int{catalog.Windmill: 1})
	b := model.NewConfiguration(map[string]int{catalog.PowerWheel: 1})
	c := model.NewConfiguration(map[string]int{catalog.WaterWheel: 3})
	r := &Result{History: []Candidate{
		{Config: c, Cost: 150, Feasible: true},
		{Config: a, Cost: 40, Feasible: true},
		{Config: b, Cost: 50, Feasible: false},
		{Config: a, Cost: 40, Feasible: true},
	}}
	ranked := r.Ranked(0)
	require.Len(t, ranked, 2)
	assert.Equal(t, a.Key(), ranked[0].Config.Key())
	assert.Equal(t, c.Key(), ranked[1].Config.Key())
	assert.Len(t, r.Ranked(1), 1)
}

func TestOffer_KeepsFirstOfEqualCandidates(t *testing.T) {
	s := mustNew(t, newRunner(t), smallOptions()).newSearch(lumber)
	s.result = &Result{}

	first := Candidate{Config: model.NewConfiguration(map[string]int{catalog.PowerWheel: 1}), Cost: 50, Feasible: true}
	tie := Candidate{Config: model.NewConfiguration(map[string]int{catalog.WaterWheel: 1}), Cost: 50, Feasible: true}
	cheaper := Candidate{Config: model.NewConfiguration(map[string]int{catalog.Windmill: 1}), Cost: 40, Feasible: true}

	s.offer(first, 0)
	s.offer(tie, 1)
	assert.Equal(t, first.Config.Key(), s.result.Best.Key())

	s.offer(cheaper, 2)
	assert.Equal(t, cheaper.Config.Key(), s.result.Best.Key())
	assert.Equal(t, 40.0, s.result.Cost)
}

func TestCompare(t *testing.T) {
	feasible := Candidate{Cost: 100, Feasible: true}
	cheap := Candidate{Cost: 10, Downtime: 0.2}
	nearly := Candidate{Cost: 500, Downtime: 0.1}
	assert.Negative(t, compare(feasible, cheap, false))
	assert.Negative(t, compare(nearly, cheap, false))
	assert.Negative(t, compare(Candidate{Cost: 500, Downtime: 0.1}, Candidate{Cost: 600, Downtime: 0.1}, false))

	short := Candidate{Downtime: 0.01, Stats: model.DowntimeStatistics{MeanSurplus: -5}}
	assert.Negative(t, compare(nearly, short, true))
	assert.Positive(t, compare(nearly, short, false))
}
