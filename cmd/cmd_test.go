package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/pkg/export"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunCmd_JSON(t *testing.T) {
	trace := filepath.Join(t.TempDir(), "worst.csv")
	out, err := execute(t, "run",
		"--factory", "lumber_mill=1",
		"--equipment", "power_wheel=1",
		"--days", "5", "--runs", "4",
		"--format", "json",
		"--trace-out", trace,
	)
	require.NoError(t, err)

	var doc export.EvaluationDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 50.0, doc.Cost)
	assert.Equal(t, 4, doc.Statistics.Runs)
	assert.Zero(t, doc.Statistics.P95)
	assert.Equal(t, map[string]int{"lumber_mill": 1, "power_wheel": 1}, doc.Configuration.Equipment)

	f, err := os.Open(trace)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1+5*24)
}

func TestRunCmd_TextWithHeights(t *testing.T) {
	out, err := execute(t, "run",
		"--factory", "lumber_mill=1",
		"--equipment", "battery=2",
		"--height", "battery=1:3",
		"--days", "2", "--runs", "2",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "battery=2@1,3")
	assert.Contains(t, out, "capacity       16000.0")
}

func TestRunCmd_Errors(t *testing.T) {
	_, err := execute(t, "run", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "run", "--height", "battery=tall")
	assert.ErrorContains(t, err, "height of battery")

	_, err = execute(t, "run", "--runs", "-3")
	assert.Error(t, err)

	_, err = execute(t, "run", "--config", "missing.toml")
	assert.ErrorContains(t, err, "load config")
}

func TestOptimizeCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`optimizer:
  bounds:
    power_wheel: {min: 0, max: 3}
factories:
  lumber_mill: 1
`), 0o644))
	report := filepath.Join(dir, "ranking.json")
	out, err := execute(t, "optimize",
		"--config", cfgPath,
		"--iterations", "6", "--walkers", "2",
		"--days", "5", "--runs", "4",
		"--top", "3",
		"--out", report,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "best")
	assert.Contains(t, out, "RANK")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var doc export.ResultDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, doc.Feasible)
	assert.NotEmpty(t, doc.RunID)
	assert.LessOrEqual(t, len(doc.Ranking), 3)
}

func TestOptimizeCmd_NeedsFactories(t *testing.T) {
	_, err := execute(t, "optimize", "--iterations", "1")
	assert.ErrorContains(t, err, "no factories")
}

func TestCatalogCmd(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "large_windmill")
	assert.Contains(t, out, "cut-in 0.2")

	out, err = execute(t, "catalog", "--format", "json")
	require.NoError(t, err)
	var docs []specDoc
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	assert.Len(t, docs, 17)
}
