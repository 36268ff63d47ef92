package metrics

import "errors"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEvaluation forwards the record to all sinks. A failing sink does not
// stop delivery to the others; all errors are joined.
func (m *MultiSink) RecordEvaluation(rec EvaluationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordEvaluation(rec))
	}
	return errors.Join(errs...)
}

// RecordImprovement forwards to sinks implementing ImprovementRecorder.
func (m *MultiSink) RecordImprovement(rec ImprovementRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(ImprovementRecorder); ok {
			errs = append(errs, r.RecordImprovement(rec))
		}
	}
	return errors.Join(errs...)
}

// RecordIteration forwards to sinks implementing IterationRecorder.
func (m *MultiSink) RecordIteration(rec IterationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(IterationRecorder); ok {
			errs = append(errs, r.RecordIteration(rec))
		}
	}
	return errors.Join(errs...)
}

// RecordSimulation forwards to sinks implementing SimulationRecorder.
func (m *MultiSink) RecordSimulation(rec SimulationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(SimulationRecorder); ok {
			errs = append(errs, r.RecordSimulation(rec))
		}
	}
	return errors.Join(errs...)
}

// Closer is implemented by sinks holding a connection.
type Closer interface {
	Close()
}

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			c.Close()
		}
	}
}
