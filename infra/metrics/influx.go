package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/infra/logger"
)

// InfluxSink writes optimizer activity to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEvaluation writes one candidate evaluation.
func (s *InfluxSink) RecordEvaluation(rec coremetrics.EvaluationRecord) error {
	p := write.NewPointWithMeasurement("candidate_evaluation").
		AddTag("run_id", rec.RunID).
		AddTag("feasible", strconv.FormatBool(rec.Feasible)).
		AddField("iteration", rec.Iteration).
		AddField("walker", rec.Walker).
		AddField("config", rec.Config).
		AddField("cost", round3(rec.Cost)).
		AddField("downtime", round3(rec.Downtime)).
		AddField("surplus", round3(rec.Surplus)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordImprovement writes a new best configuration.
func (s *InfluxSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	p := write.NewPointWithMeasurement("best_configuration").
		AddTag("run_id", rec.RunID).
		AddTag("feasible", strconv.FormatBool(rec.Feasible)).
		AddField("iteration", rec.Iteration).
		AddField("config", rec.Config).
		AddField("cost", round3(rec.Cost)).
		AddField("downtime", round3(rec.Downtime)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordIteration writes optimizer progress.
func (s *InfluxSink) RecordIteration(rec coremetrics.IterationRecord) error {
	p := write.NewPointWithMeasurement("optimizer_iteration").
		AddTag("run_id", rec.RunID).
		AddField("iteration", rec.Iteration).
		AddField("evaluations", rec.Evaluations).
		AddField("best_cost", round3(rec.BestCost)).
		AddField("best_downtime", round3(rec.BestDowntime)).
		AddField("feasible", rec.Feasible).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordSimulation writes the statistics of a direct simulation.
func (s *InfluxSink) RecordSimulation(rec coremetrics.SimulationRecord) error {
	p := write.NewPointWithMeasurement("simulation").
		AddTag("config", rec.Config).
		AddField("runs", rec.Runs).
		AddField("mean", round3(rec.Mean)).
		AddField("p95", round3(rec.P95)).
		AddField("worst", round3(rec.WorstFraction)).
		AddField("surplus", round3(rec.MeanSurplus)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
