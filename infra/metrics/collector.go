package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/powermix/core/events"
	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// optimizer events. It stops when the context is canceled or the bus is
// closed. The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	now := time.Now()
	switch e := ev.(type) {
	case events.EvaluationEvent:
		_ = sink.RecordEvaluation(coremetrics.EvaluationRecord{
			RunID:     e.RunID,
			Iteration: e.Iteration,
			Walker:    e.Walker,
			Config:    e.Config.Key(),
			Cost:      e.Cost,
			Downtime:  e.Downtime,
			Surplus:   e.Surplus,
			Feasible:  e.Feasible,
			Duration:  e.Duration,
			Time:      now,
		})
	case events.ImprovementEvent:
		if r, ok := sink.(coremetrics.ImprovementRecorder); ok {
			_ = r.RecordImprovement(coremetrics.ImprovementRecord{
				RunID:     e.RunID,
				Iteration: e.Iteration,
				Config:    e.Config.Key(),
				Cost:      e.Cost,
				Downtime:  e.Downtime,
				Feasible:  e.Feasible,
				Time:      now,
			})
		}
	case events.IterationEvent:
		if r, ok := sink.(coremetrics.IterationRecorder); ok {
			_ = r.RecordIteration(coremetrics.IterationRecord{
				RunID:        e.RunID,
				Iteration:    e.Iteration,
				Evaluations:  e.Evaluations,
				BestCost:     e.BestCost,
				BestDowntime: e.BestDowntime,
				Feasible:     e.Feasible,
				Time:         now,
			})
		}
	}
}
