package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/clientpack"

// Metrics holds the instruments recorded by the bundling pipeline.
type Metrics struct {
	BuildsTotal       metric.Int64Counter
	BuildErrorsTotal  metric.Int64Counter
	BuildDuration     metric.Float64Histogram
	PassDuration      metric.Float64Histogram
	OutputBytes       metric.Int64Counter
	OutputFilesTotal  metric.Int64Counter
	UnusedSourceFiles metric.Int64Gauge
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process wide instruments. Until Init installs a
// provider they record to the global no-op meter.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = newMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"clientpack.builds.total",
		metric.WithDescription("Total number of pipeline builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"clientpack.builds.errors.total",
		metric.WithDescription("Total number of failed pipeline builds"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"clientpack.build.duration",
		metric.WithDescription("Duration of a complete pipeline build"),
		metric.WithUnit("ms"),
	)

	m.PassDuration, _ = meter.Float64Histogram(
		"clientpack.build.pass.duration",
		metric.WithDescription("Duration of a single bundling pass"),
		metric.WithUnit("ms"),
	)

	m.OutputBytes, _ = meter.Int64Counter(
		"clientpack.output.bytes",
		metric.WithDescription("Bytes emitted by bundling passes"),
		metric.WithUnit("By"),
	)

	m.OutputFilesTotal, _ = meter.Int64Counter(
		"clientpack.output.files.total",
		metric.WithDescription("Files emitted by bundling passes"),
		metric.WithUnit("{file}"),
	)

	m.UnusedSourceFiles, _ = meter.Int64Gauge(
		"clientpack.audit.unused",
		metric.WithDescription("Source files no entry point reached"),
		metric.WithUnit("{file}"),
	)

	return m
}

// Mode tags a measurement with the build mode.
func Mode(mode string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("mode", mode))
}

// Chunk tags a measurement with the chunk a pass produced.
func Chunk(mode, chunk string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("mode", mode), attribute.String("chunk", chunk))
}

// RecordPass records the size and duration of one bundling pass.
func (m *Metrics) RecordPass(ctx context.Context, mode, chunk string, files int, bytes int64, ms float64) {
	opt := Chunk(mode, chunk)
	m.PassDuration.Record(ctx, ms, opt)
	m.OutputFilesTotal.Add(ctx, int64(files), opt)
	m.OutputBytes.Add(ctx, bytes, opt)
}
