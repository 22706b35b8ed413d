package instrumentation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.Nil(t, provider.Gatherer())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	require.NotNil(t, provider.Gatherer())

	provider.Metrics().RecordArchived(ctx, 2)

	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "threads_archived") {
			found = true
		}
	}
	assert.True(t, found, "threads_archived_total not exported")
}

func TestNewProvider_TwiceDoesNotCollide(t *testing.T) {
	ctx := context.Background()
	config := Config{Enabled: true, ServiceName: "test", MetricsExporter: ExporterPrometheus}

	first, err := NewProvider(ctx, config)
	require.NoError(t, err)
	defer func() { _ = first.Shutdown(ctx) }()

	second, err := NewProvider(ctx, config)
	require.NoError(t, err)
	defer func() { _ = second.Shutdown(ctx) }()
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		ServiceName:     "test",
		MetricsExporter: "statsd",
	})
	assert.Error(t, err)
}

func TestNewProvider_OTLPRequiresEndpoint(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		ServiceName:     "test",
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterOTLP,
	})
	assert.Error(t, err)
}
