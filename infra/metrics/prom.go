package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powermix/core/metrics"
)

// PromSink records optimizer and simulation activity in Prometheus metrics.
type PromSink struct {
	evaluations  *prometheus.CounterVec
	evalDuration prometheus.Histogram
	downtime     prometheus.Histogram
	bestCost     *prometheus.GaugeVec
	bestDowntime *prometheus.GaugeVec
	iterations   prometheus.Counter
	simP95       *prometheus.GaugeVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.evaluations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powermix_evaluations_total",
		Help: "Monte Carlo evaluations performed by the optimizer",
	}, []string{"feasible"})); err != nil {
		return nil, err
	}
	if s.evalDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "powermix_evaluation_duration_seconds",
		Help:    "Wall time of one Monte Carlo evaluation",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})); err != nil {
		return nil, err
	}
	if s.downtime, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "powermix_candidate_downtime_ratio",
		Help:    "Downtime percentile of evaluated candidates",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1},
	})); err != nil {
		return nil, err
	}
	if s.bestCost, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powermix_best_cost",
		Help: "Cost of the best configuration of an optimization run",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.bestDowntime, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powermix_best_downtime_ratio",
		Help: "Downtime percentile of the best configuration of an optimization run",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.iterations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "powermix_iterations_total",
		Help: "Completed optimizer iterations",
	})); err != nil {
		return nil, err
	}
	if s.simP95, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powermix_simulation_p95_downtime_ratio",
		Help: "95th percentile downtime of a directly simulated configuration",
	}, []string{"config"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordEvaluation counts the evaluation and observes its downtime.
func (s *PromSink) RecordEvaluation(rec coremetrics.EvaluationRecord) error {
	s.evaluations.WithLabelValues(strconv.FormatBool(rec.Feasible)).Inc()
	s.evalDuration.Observe(rec.Duration.Seconds())
	s.downtime.Observe(rec.Downtime)
	return nil
}

// RecordImprovement sets the best gauges of the run.
func (s *PromSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	s.bestCost.WithLabelValues(rec.RunID).Set(rec.Cost)
	s.bestDowntime.WithLabelValues(rec.RunID).Set(rec.Downtime)
	return nil
}

// RecordIteration counts completed iterations.
func (s *PromSink) RecordIteration(coremetrics.IterationRecord) error {
	s.iterations.Inc()
	return nil
}

// RecordSimulation exposes the p95 downtime of a simulated configuration.
func (s *PromSink) RecordSimulation(rec coremetrics.SimulationRecord) error {
	s.simP95.WithLabelValues(rec.Config).Set(rec.P95)
	return nil
}
