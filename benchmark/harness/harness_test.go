package harness_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	. "github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/helper"
)

func Test_New_When_BackendIsNil_Then_ErrorIsReturned(t *testing.T) {
	// act
	h, err := harness.New(nil, harness.DefaultConfig())

	// assert
	assert.Nil(t, h)
	assert.ErrorIs(t, err, harness.ErrNilBackend)
}

func Test_New_When_ConfigIsInvalid_Then_ErrorIsReturned(t *testing.T) {
	// setup
	cfg := harness.DefaultConfig()
	cfg.Runs = 0

	// act
	_, err := harness.New(newMemoryBackend(t), cfg)

	// assert
	assert.ErrorIs(t, err, harness.ErrInvalidConfig)
}

func Test_New_When_CallerMutatesConfigAfterward_Then_HarnessKeepsItsCopy(t *testing.T) {
	// setup
	cfg := smallConfig()
	h, err := harness.New(newMemoryBackend(t), cfg)
	require.NoError(t, err)

	// act
	cfg.Scales[0] = 99999

	// assert
	assert.Equal(t, []int{10}, h.Config().Scales)
}

func Test_Run_When_AllPhasesAreEnabled_Then_SummaryIsCompleteAndBackendIsReleased(t *testing.T) {
	// setup
	memory := newMemoryBackend(t)
	spy := NewBackendSpy(memory)
	cfg := smallConfig()
	cfg.SkipWarmup, cfg.SkipSweep, cfg.SkipLatencyProbe, cfg.SkipConcurrency = false, false, false, false
	cfg.Scales = []int{10, 50}
	cfg.Runs = 2
	h := newHarness(t, spy, cfg)

	// act
	summary, err := h.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, "memory", summary.Backend)
	require.NotNil(t, summary.Sweep)
	assert.Equal(t, 2, summary.Sweep.CompletedRuns)
	assert.Equal(t, 2, summary.Sweep.Report.Observations(50, benchmark.OperationDemographicQuery))
	require.NotNil(t, summary.Probe)
	assert.Equal(t, 1, summary.Probe.Read.Affected)
	require.NotNil(t, summary.Concurrency)
	assert.Len(t, summary.Concurrency.Levels, 2)

	assert.Equal(t, 1, spy.CloseCount())
	assert.True(t, memory.Closed())
	calls := spy.Calls()
	assert.Equal(t, benchmark.OperationClear, calls[len(calls)-1].Operation)
}

func Test_Run_When_GenerationFails_Then_ErrorIsReturnedAndBackendIsStillReleased(t *testing.T) {
	// setup
	spy := NewBackendSpy(newMemoryBackend(t))
	cfg := smallConfig()
	cfg.SkipSweep = false
	generator := benchmark.NewGenerator(benchmark.WithIDSource(func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("no ids left")
	}))
	h := newHarness(t, spy, cfg, harness.WithGenerator(generator))

	// act
	summary, err := h.Run(context.Background())

	// assert
	assert.ErrorIs(t, err, benchmark.ErrGenerationFailed)
	require.NotNil(t, summary.Sweep)
	assert.Nil(t, summary.Concurrency)
	assert.Equal(t, 1, spy.CloseCount())
}

func Test_Run_When_ContextIsCanceled_Then_CleanupStillRuns(t *testing.T) {
	// setup
	memory := newMemoryBackend(t)
	spy := NewBackendSpy(memory)
	cfg := smallConfig()
	cfg.SkipSweep = false
	h := newHarness(t, spy, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := h.Run(ctx)

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, spy.CallsOf(benchmark.OperationClear), 1)
	assert.True(t, memory.Closed())
}

func Test_Run_When_ProbeFails_Then_ItIsSkippedAndConcurrencyStillRuns(t *testing.T) {
	// setup
	spy := NewBackendSpy(newMemoryBackend(t), FailOnCall(benchmark.OperationRead, 1))
	cfg := smallConfig()
	cfg.SkipLatencyProbe = false
	cfg.SkipConcurrency = false
	h := newHarness(t, spy, cfg)

	// act
	summary, err := h.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Nil(t, summary.Probe)
	require.NotNil(t, summary.Concurrency)
	assert.Len(t, summary.Concurrency.Levels, 2)
}
