package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/oteladapters"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/helper"
)

func Test_SlogBridgeLogger_When_HandlerIsGiven_Then_AllLevelsReachIt(t *testing.T) {
	// setup
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "benchmark operation: read", "scale", 100)
	logger.InfoContext(ctx, "scale averages", "scale", 100)
	logger.WarnContext(ctx, "warm-up step failed, continuing")
	logger.ErrorContext(ctx, "sweep run aborted")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"msg":"scale averages"`)
	assert.Contains(t, output, `"scale":100`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
}

func Test_NewSlogBridgeLogger_When_NoProviderIsSet_Then_LoggingIsSafe(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("backend-bench")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "warm-up finished", "failures", 0)
	})
}

func Test_NewSlogBridgeLoggerWithProvider_When_LoggingInASpan_Then_RecordIsExportedWithTheTraceID(t *testing.T) {
	// setup
	exporter := helper.NewLogExporterSpy()
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	logger := oteladapters.NewSlogBridgeLoggerWithProvider("backend-bench", provider)

	ctx, span := sdktrace.NewTracerProvider().Tracer("test").Start(context.Background(), "benchmark.warmup")
	defer span.End()

	// act
	logger.InfoContext(ctx, "warm-up finished", "failures", 0)

	// assert
	logs := exporter.Logs()
	if assert.Len(t, logs, 1) {
		assert.Equal(t, "warm-up finished", logs[0].Body)
		assert.Equal(t, span.SpanContext().TraceID(), logs[0].TraceID)
	}
}
