package harness_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/memengine"
	. "github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/helper"
)

// importedBackend returns a memory backend that already holds count records, as after import-users.
func importedBackend(t *testing.T, count int) *memengine.Backend {
	t.Helper()

	memory := newMemoryBackend(t)
	records, err := benchmark.NewGenerator().Generate(count)
	require.NoError(t, err)
	_, err = memory.BulkWrite(context.Background(), records)
	require.NoError(t, err)

	return memory
}

func Test_MeasureQueries_When_DataExists_Then_EveryQueryIsMeasuredPerRunWithoutTouchingTheData(t *testing.T) {
	// setup
	memory := importedBackend(t, 50)
	spy := NewBackendSpy(memory)
	cfg := smallConfig()
	cfg.Runs = 2
	h := newHarness(t, spy, cfg)

	// act
	summary, err := h.MeasureQueries(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Runs)
	require.Len(t, summary.Results, len(benchmark.QueryKinds()))
	for i, kind := range benchmark.QueryKinds() {
		result := summary.Results[i]
		assert.Equal(t, kind, result.Kind)
		assert.Len(t, result.Durations, 2)
		assert.Equal(t, benchmark.MeanDuration(result.Durations), result.Mean)
		assert.Equal(t, 0, result.Failures)
	}
	assert.Positive(t, summary.Results[1].Rows, "demographic groups of 50 records")

	assert.Empty(t, spy.CallsOf(benchmark.OperationClear))
	assert.Empty(t, spy.CallsOf(benchmark.OperationWrite))
	assert.Equal(t, 50, memory.Count())
}

func Test_MeasureQueries_When_OneQueryFails_Then_ItIsCountedAndTheOthersContinue(t *testing.T) {
	// setup
	logHandlerSpy := NewLogHandlerSpy(false)
	spy := NewBackendSpy(importedBackend(t, 20), FailOnCall(benchmark.OperationDemographicQuery, 1))
	cfg := smallConfig()
	cfg.Runs = 3
	h := newHarness(t, spy, cfg, harness.WithLogger(logHandlerSpy.Logger()))

	// act
	summary, err := h.MeasureQueries(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Runs)
	assert.Len(t, summary.Results[0].Durations, 3)
	assert.Len(t, summary.Results[1].Durations, 2)
	assert.Equal(t, 1, summary.Results[1].Failures)
	assert.True(t, logHandlerSpy.HasLogWithAttr(slog.LevelWarn, "named query failed, continuing", "query"))
}

func Test_MeasureQueries_When_ContextIsCanceled_Then_ErrorIsReturned(t *testing.T) {
	// setup
	h := newHarness(t, NewBackendSpy(importedBackend(t, 5)), smallConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	summary, err := h.MeasureQueries(ctx)

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Runs)
	assert.Len(t, summary.Results, len(benchmark.QueryKinds()))
}

func Test_Run_When_QueriesOnly_Then_OnlyQueriesRunAndTheDataIsKept(t *testing.T) {
	// setup
	memory := importedBackend(t, 30)
	spy := NewBackendSpy(memory)
	cfg := smallConfig()
	cfg.SkipWarmup, cfg.SkipSweep, cfg.SkipLatencyProbe, cfg.SkipConcurrency = false, false, false, false
	cfg.QueriesOnly = true
	h := newHarness(t, spy, cfg)

	// act
	summary, err := h.Run(context.Background())

	// assert
	require.NoError(t, err)
	require.NotNil(t, summary.Queries)
	assert.Equal(t, 1, summary.Queries.Runs)
	assert.Nil(t, summary.Sweep)
	assert.Nil(t, summary.Probe)
	assert.Nil(t, summary.Concurrency)

	assert.Empty(t, spy.CallsOf(benchmark.OperationClear), "not even on shutdown")
	assert.Empty(t, spy.CallsOf(benchmark.OperationWrite))
	assert.Equal(t, 1, spy.CloseCount())
	assert.Equal(t, 30, memory.Count())
}
