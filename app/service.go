// Package app assembles the simulation stack from configuration.
package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/powermix/config"
	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/environment"
	"github.com/kilianp07/powermix/core/factory"
	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/montecarlo"
	"github.com/kilianp07/powermix/core/optimizer"
	"github.com/kilianp07/powermix/core/simulation"
	"github.com/kilianp07/powermix/infra/logger"
	"github.com/kilianp07/powermix/infra/metrics"
	"github.com/kilianp07/powermix/infra/mqtt"
	"github.com/kilianp07/powermix/internal/eventbus"
)

// Service owns the catalog, the Monte Carlo runner and the metrics sinks.
type Service struct {
	Catalog *catalog.Catalog
	Runner  *montecarlo.Runner

	cfg      *config.Config
	calendar environment.Calendar
	sink     coremetrics.MetricsSink
	log      logger.Logger
}

// Evaluation reports one configuration evaluated by the runner.
type Evaluation struct {
	Config   model.Configuration
	Stats    model.DowntimeStatistics
	Cost     float64
	Demand   float64
	Capacity float64
	// Worst is the replayed trace of the run with the highest downtime.
	Worst model.SimulationTrace
	// Seasons marks the season changes over the simulated days.
	Seasons  []environment.Boundary
	Duration time.Duration
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cat, err := cfg.Catalog.Build()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	gen, err := environment.NewGenerator(cfg.GeneratorOptions())
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	sim, err := simulation.New(cat, cfg.Simulation.SimulatorOptions())
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	runner, err := montecarlo.NewRunner(sim, gen, cfg.Simulation.RunnerOptions(), logger.New("montecarlo"))
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	sink, err := newSink(cfg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return &Service{Catalog: cat, Runner: runner, cfg: cfg, calendar: gen.Calendar(), sink: sink, log: logg}, nil
}

// newSink builds the configured sinks. A Prometheus address without a
// prometheus sink adds one, and an MQTT broker adds a progress publisher.
func newSink(cfg *config.Config) (coremetrics.MetricsSink, error) {
	sinks := []coremetrics.MetricsSink{}
	if len(cfg.Metrics.Sinks) > 0 {
		s, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	hasProm := slices.ContainsFunc(cfg.Metrics.Sinks, func(m factory.ModuleConfig) bool { return m.Type == "prometheus" })
	if cfg.Metrics.PrometheusAddr != "" && !hasProm {
		s, err := metrics.NewPromSink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.MQTT.Broker != "" {
		cli, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, metrics.NewMQTTSink(cli))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Configuration returns the energy mix of the configuration file together
// with the required factories.
func (s *Service) Configuration() model.Configuration {
	return s.cfg.EnergyMix.Configuration(s.cfg.Factories)
}

// Evaluate runs the Monte Carlo evaluation of cfg and replays its worst run.
func (s *Service) Evaluate(ctx context.Context, cfg model.Configuration) (*Evaluation, error) {
	start := time.Now()
	seed := s.cfg.Simulation.Seed
	stats, err := s.Runner.Evaluate(ctx, cfg, seed)
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{Config: cfg, Stats: stats}
	if ev.Cost, err = s.Catalog.Cost(cfg); err != nil {
		return nil, err
	}
	if ev.Demand, err = s.Catalog.Demand(cfg); err != nil {
		return nil, err
	}
	if ev.Capacity, err = s.Catalog.Capacity(cfg); err != nil {
		return nil, err
	}
	if ev.Worst, err = s.Runner.Replay(cfg, seed, stats.WorstRun); err != nil {
		return nil, err
	}
	ev.Seasons = s.calendar.Boundaries(s.cfg.Simulation.Days)
	ev.Duration = time.Since(start)

	if r, ok := s.sink.(coremetrics.SimulationRecorder); ok {
		if err := r.RecordSimulation(coremetrics.SimulationRecord{
			Config:        cfg.Key(),
			Runs:          stats.Runs,
			Mean:          stats.Mean,
			P95:           stats.P95(),
			WorstFraction: stats.WorstFraction,
			MeanSurplus:   stats.MeanSurplus,
			Duration:      ev.Duration,
			Time:          time.Now(),
		}); err != nil {
			s.log.Warnf("record simulation: %v", err)
		}
	}
	s.log.Infof("evaluated %s: mean %.4f p95 %.4f over %d runs in %s",
		cfg, stats.Mean, stats.P95(), stats.Runs, ev.Duration.Round(time.Millisecond))
	return ev, nil
}

// Optimize searches for the cheapest mix powering the required factories.
// Progress events are forwarded to the metrics sinks while it runs.
func (s *Service) Optimize(ctx context.Context) (*optimizer.Result, error) {
	bus := eventbus.New()
	opts := s.cfg.Optimizer.Options()
	opts.WaterShare = s.calendar.WaterShare()
	opt, err := optimizer.New(s.Catalog, s.Runner, opts, bus, logger.New("optimizer"))
	if err != nil {
		return nil, err
	}
	done := metrics.StartEventCollector(ctx, bus, s.sink)
	defer func() {
		bus.Close()
		<-done
		if n := bus.Dropped(); n > 0 {
			s.log.Warnf("%d optimizer events were not recorded", n)
		}
	}()

	required := model.NewConfiguration(s.cfg.Factories)
	res, err := opt.Optimize(ctx, required)
	if res != nil {
		s.log.Infof("optimization %s: best %s cost %.1f downtime %.4f feasible=%t after %d evaluations",
			res.RunID, res.Best, res.Cost, res.Downtime, res.Feasible, res.Evaluations)
	}
	return res, err
}

// ServeMetrics exposes Prometheus metrics until ctx is canceled. It returns
// immediately when no address is configured.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, nil)
}

// Close releases sink connections.
func (s *Service) Close() error {
	if c, ok := s.sink.(coremetrics.Closer); ok {
		c.Close()
	}
	return nil
}
