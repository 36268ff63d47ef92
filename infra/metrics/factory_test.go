package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermix/core/factory"
	coremetrics "github.com/kilianp07/powermix/core/metrics"
)

/*
TestMetricsFactory_Builtins verifies the registrations in factory.go.

	Cases:
	- every builtin type is registered
	- nop sink is instantiated
	- influx without url is rejected
	- mqtt without broker is rejected
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	for _, name := range []string{"nop", "prometheus", "influx", "mqtt"} {
		assert.Contains(t, coremetrics.SinkTypes(), name)
	}

	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"bucket": "b"}}})
	assert.Error(t, err)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "mqtt", Conf: map[string]any{}}})
	assert.Error(t, err)
}
