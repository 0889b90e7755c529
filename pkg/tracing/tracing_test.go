package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromMapDefaultsToDisabledStdout(t *testing.T) {
	cfg := ConfigFromMap(map[string]any{})
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "stdout", cfg.Exporter)
	assert.Equal(t, "refactorctl", cfg.ServiceName)
}

func TestConfigFromMapReadsTracingBlock(t *testing.T) {
	cfg := ConfigFromMap(map[string]any{
		"tracing": map[string]any{
			"enabled":       true,
			"exporter":      "otlp",
			"endpoint":      "localhost:4317",
			"sampling_rate": 0.5,
			"service_name":  "refactorctl-test",
		},
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "otlp", cfg.Exporter)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, 0.5, cfg.SamplingRate)
	assert.Equal(t, "refactorctl-test", cfg.ServiceName)
}

func TestInitInstallsNoopProviderWhenDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
