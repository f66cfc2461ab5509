package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/memengine"
)

func Test_Harness_When_OTelCollectorsAreWired_Then_SweepIsExportedAsMetricsAndSpans(t *testing.T) {
	// setup
	metrics, reader := newMetricsCollector()
	tracing, exporter := newTracingCollector()
	backend, err := memengine.NewBackend()
	require.NoError(t, err)

	cfg := harness.DefaultConfig()
	cfg.Scales = []int{20}
	cfg.Runs = 2
	cfg.SkipWarmup, cfg.SkipLatencyProbe, cfg.SkipConcurrency = true, true, true

	h, err := harness.New(backend, cfg, harness.WithMetrics(metrics), harness.WithTracing(tracing))
	require.NoError(t, err)

	// act
	_, err = h.Run(context.Background())

	// assert
	require.NoError(t, err)

	histogram, ok := findMetric(t, collect(t, reader), "benchmark_operation_duration_seconds").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var observations uint64
	for _, dp := range histogram.DataPoints {
		observations += dp.Count
	}
	assert.Positive(t, observations)

	names := make(map[string]int)
	for _, span := range exporter.GetSpans() {
		names[span.Name]++
	}
	assert.Equal(t, 2, names["benchmark.sweep.run"])
	assert.Equal(t, 2, names["benchmark.sweep.scale"])
}
