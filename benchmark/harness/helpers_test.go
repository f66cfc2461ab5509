package harness_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/memengine"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/helper"
)

// smallConfig returns a fast configuration with every phase switched off.
func smallConfig() harness.Config {
	cfg := harness.DefaultConfig()
	cfg.Scales = []int{10}
	cfg.Runs = 1
	cfg.WarmupScale = 5
	cfg.ConcurrencyMax = 2
	cfg.ConcurrencyRecords = 20
	cfg.SkipWarmup = true
	cfg.SkipSweep = true
	cfg.SkipLatencyProbe = true
	cfg.SkipConcurrency = true

	return cfg
}

func newMemoryBackend(t *testing.T) *memengine.Backend {
	t.Helper()

	backend, err := memengine.NewBackend()
	require.NoError(t, err)

	return backend
}

func newHarness(t *testing.T, backend *helper.BackendSpy, cfg harness.Config, options ...harness.Option) *harness.Harness {
	t.Helper()

	h, err := harness.New(backend, cfg, options...)
	require.NoError(t, err)

	return h
}
