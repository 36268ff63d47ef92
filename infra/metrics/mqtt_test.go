package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/infra/mqtt"
)

func TestMQTTSink_Topics(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub)

	require.NoError(t, sink.RecordEvaluation(coremetrics.EvaluationRecord{RunID: "r1", Cost: 10, Duration: 2 * time.Millisecond}))
	require.NoError(t, sink.RecordImprovement(coremetrics.ImprovementRecord{RunID: "r1", Config: "windmill=1", Cost: 40}))
	require.NoError(t, sink.RecordIteration(coremetrics.IterationRecord{RunID: "r1", Iteration: 1}))
	require.NoError(t, sink.RecordSimulation(coremetrics.SimulationRecord{Config: "windmill=1", P95: 0.02}))

	assert.Equal(t, []string{"r1/evaluation", "r1/best", "r1/progress", "simulation"}, pub.Topics())
	assert.False(t, pub.Messages[0].Retained)
	assert.True(t, pub.Messages[1].Retained)

	var best map[string]any
	require.NoError(t, json.Unmarshal(pub.Messages[1].Payload, &best))
	assert.Equal(t, "windmill=1", best["config"])
	assert.Equal(t, 40.0, best["cost"])
	assert.NotZero(t, best["timestamp"])

	var eval map[string]any
	require.NoError(t, json.Unmarshal(pub.Messages[0].Payload, &eval))
	assert.Equal(t, 2.0, eval["duration_ms"])
}

func TestMQTTSink_PublishError(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	pub.Fail = true
	assert.Error(t, NewMQTTSink(pub).RecordEvaluation(coremetrics.EvaluationRecord{}))
}
