// Package events defines the optimization events emitted on the event bus.
//
// Available event types:
//   - EvaluationEvent: one candidate configuration was scored
//   - ImprovementEvent: the global best configuration changed
//   - IterationEvent: every walker finished one search step
package events
