package benchmark_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

func Test_Aggregator_Finalize_When_ThreeObservations_Then_MeanIsTheirAverage(t *testing.T) {
	// setup
	aggregator := benchmark.NewAggregator()

	// arrange
	aggregator.Record(1000, benchmark.OperationWrite, 10*time.Millisecond)
	aggregator.Record(1000, benchmark.OperationWrite, 20*time.Millisecond)
	aggregator.Record(1000, benchmark.OperationWrite, 30*time.Millisecond)

	// act
	report := aggregator.Finalize()

	// assert
	assert.Equal(t, 20*time.Millisecond, report.Mean(1000, benchmark.OperationWrite))
	assert.Equal(t, 3, report.Observations(1000, benchmark.OperationWrite))
}

func Test_Aggregator_Finalize_When_NoObservations_Then_MeanIsZero(t *testing.T) {
	// setup
	aggregator := benchmark.NewAggregator()

	// act
	report := aggregator.Finalize()

	// assert
	assert.True(t, report.Empty())
	assert.Equal(t, time.Duration(0), report.Mean(100, benchmark.OperationRead))
	assert.Equal(t, 0, report.Observations(100, benchmark.OperationRead))
}

func Test_Aggregator_Finalize_When_KeysDiffer_Then_MeansAreKeptApart(t *testing.T) {
	// setup
	aggregator := benchmark.NewAggregator()

	// arrange
	aggregator.RecordResults(
		benchmark.Result{Scale: 100, Operation: benchmark.OperationRead, Duration: 2 * time.Millisecond},
		benchmark.Result{Scale: 100, Operation: benchmark.OperationRead, Duration: 4 * time.Millisecond},
		benchmark.Result{Scale: 1000, Operation: benchmark.OperationRead, Duration: 8 * time.Millisecond},
		benchmark.Result{Scale: 100, Operation: benchmark.OperationDelete, Duration: time.Millisecond},
	)

	// act
	report := aggregator.Finalize()

	// assert
	assert.Equal(t, 3*time.Millisecond, report.Mean(100, benchmark.OperationRead))
	assert.Equal(t, 8*time.Millisecond, report.Mean(1000, benchmark.OperationRead))
	assert.Equal(t, time.Millisecond, report.Mean(100, benchmark.OperationDelete))
	assert.Equal(t, []int{100, 1000}, report.Scales())
}

func Test_Report_Entries_When_Finalized_Then_OrderedByScaleThenOperation(t *testing.T) {
	// setup
	aggregator := benchmark.NewAggregator()

	// arrange
	aggregator.Record(1000, benchmark.OperationInactivityQuery, time.Millisecond)
	aggregator.Record(100, benchmark.OperationDelete, time.Millisecond)
	aggregator.Record(100, benchmark.OperationWrite, time.Millisecond)
	aggregator.Record(1000, benchmark.OperationWrite, time.Millisecond)

	// act
	entries := aggregator.Finalize().Entries()

	// assert
	require.Len(t, entries, 4)
	assert.Equal(t, benchmark.ReportEntry{Scale: 100, Operation: benchmark.OperationWrite, Mean: time.Millisecond, Observations: 1}, entries[0])
	assert.Equal(t, benchmark.OperationDelete, entries[1].Operation)
	assert.Equal(t, 1000, entries[2].Scale)
	assert.Equal(t, benchmark.OperationWrite, entries[2].Operation)
	assert.Equal(t, benchmark.OperationInactivityQuery, entries[3].Operation)
}

func Test_Aggregator_Record_When_CalledConcurrently_Then_NoObservationIsLost(t *testing.T) {
	// setup
	aggregator := benchmark.NewAggregator()
	var wg sync.WaitGroup

	// act
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aggregator.Record(10, benchmark.OperationUpdate, time.Millisecond)
		}()
	}
	wg.Wait()

	// assert
	report := aggregator.Finalize()
	assert.Equal(t, 50, report.Observations(10, benchmark.OperationUpdate))
	assert.Equal(t, time.Millisecond, report.Mean(10, benchmark.OperationUpdate))
}

func Test_MeanDuration_When_SliceIsEmpty_Then_ZeroIsReturned(t *testing.T) {
	assert.Equal(t, time.Duration(0), benchmark.MeanDuration(nil))
	assert.Equal(t, 20*time.Millisecond, benchmark.MeanDuration([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}))
}
