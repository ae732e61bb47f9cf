package profiling

import (
	"testing"

	"github.com/getmentor/mentor-finder/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes_Default(t *testing.T) {
	got, err := parseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, got)
}

func TestParseProfileTypes_CustomDeduplicates(t *testing.T) {
	got, err := parseProfileTypes("cpu, mutex,cpu")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestApplicationName(t *testing.T) {
	got := applicationName("", map[string]string{
		"service_name": "mentor-finder",
		"environment":  "production",
		"instance":     "pod-1",
	})
	assert.Equal(t, "mentor-finder{service_name=mentor-finder,environment=production,instance=pod-1}", got)
	assert.Equal(t, "custom", applicationName("custom", nil))
}

func TestStart_Disabled(t *testing.T) {
	stop, err := Start(config.ProfilingConfig{Enabled: false}, config.ObservabilityConfig{}, "test")
	require.NoError(t, err)
	stop()
}

func TestStart_RequiresEndpoint(t *testing.T) {
	_, err := Start(config.ProfilingConfig{Enabled: true}, config.ObservabilityConfig{}, "test")
	assert.Error(t, err)
}
