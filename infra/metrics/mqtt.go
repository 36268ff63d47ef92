package metrics

import (
	"time"

	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/infra/mqtt"
)

// MQTTSink publishes optimizer progress as JSON documents. The best
// configuration of each run is retained so late subscribers see it.
type MQTTSink struct {
	pub mqtt.Publisher
}

// NewMQTTSink wraps a publisher.
func NewMQTTSink(pub mqtt.Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

// Close disconnects the publisher when it holds a connection.
func (s *MQTTSink) Close() {
	if d, ok := s.pub.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
}

type evaluationMsg struct {
	Iteration  int     `json:"iteration"`
	Walker     int     `json:"walker"`
	Config     string  `json:"config"`
	Cost       float64 `json:"cost"`
	Downtime   float64 `json:"downtime"`
	Surplus    float64 `json:"surplus"`
	Feasible   bool    `json:"feasible"`
	DurationMS int64   `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

type bestMsg struct {
	Iteration int     `json:"iteration"`
	Config    string  `json:"config"`
	Cost      float64 `json:"cost"`
	Downtime  float64 `json:"downtime"`
	Feasible  bool    `json:"feasible"`
	Timestamp int64   `json:"timestamp"`
}

type progressMsg struct {
	Iteration    int     `json:"iteration"`
	Evaluations  int     `json:"evaluations"`
	BestCost     float64 `json:"best_cost"`
	BestDowntime float64 `json:"best_downtime"`
	Feasible     bool    `json:"feasible"`
	Timestamp    int64   `json:"timestamp"`
}

type simulationMsg struct {
	Config    string  `json:"config"`
	Runs      int     `json:"runs"`
	Mean      float64 `json:"mean"`
	P95       float64 `json:"p95"`
	Worst     float64 `json:"worst"`
	Surplus   float64 `json:"surplus"`
	Timestamp int64   `json:"timestamp"`
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

// RecordEvaluation publishes on <prefix>/<run>/evaluation.
func (s *MQTTSink) RecordEvaluation(rec coremetrics.EvaluationRecord) error {
	return s.pub.PublishJSON(rec.RunID+"/evaluation", false, evaluationMsg{
		Iteration:  rec.Iteration,
		Walker:     rec.Walker,
		Config:     rec.Config,
		Cost:       rec.Cost,
		Downtime:   rec.Downtime,
		Surplus:    rec.Surplus,
		Feasible:   rec.Feasible,
		DurationMS: rec.Duration.Milliseconds(),
		Timestamp:  millis(rec.Time),
	})
}

// RecordImprovement publishes the retained best on <prefix>/<run>/best.
func (s *MQTTSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	return s.pub.PublishJSON(rec.RunID+"/best", true, bestMsg{
		Iteration: rec.Iteration,
		Config:    rec.Config,
		Cost:      rec.Cost,
		Downtime:  rec.Downtime,
		Feasible:  rec.Feasible,
		Timestamp: millis(rec.Time),
	})
}

// RecordIteration publishes on <prefix>/<run>/progress.
func (s *MQTTSink) RecordIteration(rec coremetrics.IterationRecord) error {
	return s.pub.PublishJSON(rec.RunID+"/progress", false, progressMsg{
		Iteration:    rec.Iteration,
		Evaluations:  rec.Evaluations,
		BestCost:     rec.BestCost,
		BestDowntime: rec.BestDowntime,
		Feasible:     rec.Feasible,
		Timestamp:    millis(rec.Time),
	})
}

// RecordSimulation publishes on <prefix>/simulation.
func (s *MQTTSink) RecordSimulation(rec coremetrics.SimulationRecord) error {
	return s.pub.PublishJSON("simulation", false, simulationMsg{
		Config:    rec.Config,
		Runs:      rec.Runs,
		Mean:      rec.Mean,
		P95:       rec.P95,
		Worst:     rec.WorstFraction,
		Surplus:   rec.MeanSurplus,
		Timestamp: millis(rec.Time),
	})
}
