package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/environment"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/optimizer"
)

func sampleTrace() model.SimulationTrace {
	return model.SimulationTrace{
		Capacity:  100,
		StepHours: 1,
		Records: []model.TraceRecord{
			{Step: 0, Day: 0, Hour: 0, Season: model.SeasonWet, Working: true, Generation: 150, Consumption: 100, Net: 50, Battery: 100},
			{Step: 1, Day: 0, Hour: 1, Season: model.SeasonDry, Working: true, Generation: 0, Consumption: 100, Net: -100, Battery: 0, Deficit: true, Unmet: 0.5},
		},
	}
}

func TestWriteTraceCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTraceCSV(&buf, sampleTrace()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, traceHeader, rows[0])
	assert.Equal(t, []string{"0", "0", "0", "wet", "true", "150", "100", "50", "100", "false", "0"}, rows[1])
	assert.Equal(t, []string{"1", "0", "1", "dry", "true", "0", "100", "-100", "0", "true", "0.5"}, rows[2])
}

func TestWriteTraceJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTraceJSON(&buf, sampleTrace()))

	var doc TraceDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 0.5, doc.DowntimeFraction)
	assert.Equal(t, 0.5, doc.UnmetEnergy)
	assert.Equal(t, -50.0, doc.EnergySurplus)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "dry", doc.Records[1].Season)
	assert.True(t, doc.Records[1].Deficit)
	assert.Empty(t, doc.Seasons)
	assert.NotContains(t, buf.String(), `"seasons"`)
}

func TestWriteTraceJSON_SeasonMarks(t *testing.T) {
	cal := environment.StandardCalendar(1, 2, 1)
	var buf bytes.Buffer
	require.NoError(t, WriteTraceJSON(&buf, sampleTrace(), cal.Boundaries(5)...))

	var doc TraceDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []SeasonMark{
		{Day: 0, Season: "wet"},
		{Day: 1, Season: "dry"},
		{Day: 3, Season: "wet"},
		{Day: 4, Season: "badtide"},
	}, doc.Seasons)
}

func TestNewConfigDoc(t *testing.T) {
	cfg := model.NewConfiguration(map[string]int{catalog.Windmill: 2, catalog.WaterWheel: 0, catalog.GravityBattery: 1}).
		WithHeight(catalog.GravityBattery, 4)
	doc := NewConfigDoc(cfg)
	assert.Equal(t, map[string]int{catalog.Windmill: 2, catalog.GravityBattery: 1}, doc.Equipment)
	assert.Equal(t, map[string][]float64{catalog.GravityBattery: {4}}, doc.Heights)

	empty := NewConfigDoc(model.NewConfiguration(nil))
	assert.Empty(t, empty.Equipment)
	assert.Nil(t, empty.Heights)
}

func TestNewStatsDoc(t *testing.T) {
	stats := model.NewDowntimeStatistics([]float64{0.1, 0, 0.3, 0.2}, []float64{5, -1, 2, 2})
	doc := NewStatsDoc(stats, 0.75)
	assert.Equal(t, 4, doc.Runs)
	assert.InDelta(t, 0.15, doc.Mean, 1e-12)
	assert.Equal(t, 0.3, doc.Max)
	assert.Equal(t, 2, doc.WorstRun)
	assert.Equal(t, 2.0, doc.MeanSurplus)
	assert.Equal(t, 0.75, doc.Percentile)
	assert.Equal(t, stats.Percentile(0.75), doc.AtPercentile)

	assert.Zero(t, NewStatsDoc(stats, 0.95).Percentile)
}

func sampleResult() *optimizer.Result {
	cheap := model.NewConfiguration(map[string]int{catalog.PowerWheel: 2})
	dear := model.NewConfiguration(map[string]int{catalog.LargeWindmill: 3})
	bad := model.NewConfiguration(map[string]int{catalog.Windmill: 1})
	return &optimizer.Result{
		RunID:       "run-1",
		Best:        cheap,
		Cost:        100,
		Downtime:    0.01,
		Feasible:    true,
		Iterations:  5,
		Evaluations: 4,
		History: []optimizer.Candidate{
			{Config: bad, Cost: 40, Downtime: 0.4},
			{Config: dear, Cost: 225, Downtime: 0.02, Feasible: true},
			{Config: cheap, Cost: 100, Downtime: 0.01, Feasible: true},
			{Config: dear, Cost: 225, Downtime: 0.02, Feasible: true},
		},
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultJSON(&buf, sampleResult(), 0.95, 0))

	var doc ResultDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.True(t, doc.Feasible)
	assert.Equal(t, map[string]int{catalog.PowerWheel: 2}, doc.Best.Configuration.Equipment)
	require.Len(t, doc.Ranking, 2)
	assert.Equal(t, 1, doc.Ranking[0].Rank)
	assert.Equal(t, 100.0, doc.Ranking[0].Cost)
	assert.Equal(t, 225.0, doc.Ranking[1].Cost)
	assert.Equal(t, 3, doc.Ranking[1].Units)
}

func TestWriteRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, sampleResult(), 1))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "power_wheel=2", "100", "0.01", "2", "0"}, rows[1])
}
