package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_RecordPass(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m := newMetrics(provider.Meter(meterName))
	m.RecordPass(ctx, "production", "vendor", 2, 1024, 12.5)
	m.RecordPass(ctx, "production", "app-main", 1, 512, 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	bytes, ok := byName["clientpack.output.bytes"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range bytes.DataPoints {
		total += dp.Value
	}
	require.Equal(t, int64(1536), total)

	passes, ok := byName["clientpack.build.pass.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, passes.DataPoints, 2)
}

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())

	// the global no-op provider accepts recordings
	m.RecordPass(context.Background(), "development", "styles", 1, 10, 1)
}
