package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/config"
	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/environment"
	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/optimizer"
)

type countingSink struct {
	mu          sync.Mutex
	evaluations int
	simulations int
}

func (c *countingSink) RecordEvaluation(coremetrics.EvaluationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evaluations++
	return nil
}

func (c *countingSink) RecordSimulation(coremetrics.SimulationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.simulations++
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.Days = 10
	cfg.Simulation.Runs = 8
	cfg.Simulation.Workers = 2
	cfg.Optimizer.Iterations = 10
	cfg.Optimizer.Walkers = 2
	cfg.Optimizer.Bounds = map[string]optimizer.Range{catalog.PowerWheel: {Min: 0, Max: 4}}
	cfg.Factories = map[string]int{catalog.LumberMill: 1}
	cfg.EnergyMix.Equipment = map[string]int{catalog.PowerWheel: 1}
	return cfg
}

func TestService_Evaluate(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	sink := &countingSink{}
	svc.sink = sink

	ev, err := svc.Evaluate(context.Background(), svc.Configuration())
	require.NoError(t, err)
	assert.Equal(t, 8, ev.Stats.Runs)
	assert.Zero(t, ev.Stats.P95(), "one power wheel covers a lumber mill")
	assert.Equal(t, 50.0, ev.Cost)
	assert.Equal(t, 50.0, ev.Demand)
	assert.Zero(t, ev.Capacity)
	assert.Len(t, ev.Worst.Records, 10*24)
	assert.Equal(t, []environment.Boundary{
		{Day: 0, Season: model.SeasonWet},
		{Day: 3, Season: model.SeasonDry},
	}, ev.Seasons)
	assert.Equal(t, 1, sink.simulations)
	require.NoError(t, svc.Close())
}

func TestService_EvaluateUnknownEquipment(t *testing.T) {
	cfg := testConfig()
	cfg.EnergyMix.Equipment = map[string]int{"fusion": 1}
	svc, err := New(cfg)
	require.NoError(t, err)
	_, err = svc.Evaluate(context.Background(), svc.Configuration())
	assert.Error(t, err)
}

func TestService_Optimize(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	sink := &countingSink{}
	svc.sink = sink

	res, err := svc.Optimize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Feasible)
	assert.GreaterOrEqual(t, res.Best.Count(catalog.PowerWheel), 1)
	assert.Equal(t, 1, res.Best.Count(catalog.LumberMill))
	assert.Positive(t, sink.evaluations)
	assert.LessOrEqual(t, sink.evaluations, res.Evaluations)
}

func TestService_OptimizeRejectsBadBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Optimizer.Bounds = map[string]optimizer.Range{"fusion": {Min: 0, Max: 1}}
	svc, err := New(cfg)
	require.NoError(t, err)
	_, err = svc.Optimize(context.Background())
	assert.Error(t, err)
}

func TestNew_InvalidSimulation(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.Runs = -1
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestService_ServeMetricsDisabled(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	assert.NoError(t, svc.ServeMetrics(context.Background()))
}
