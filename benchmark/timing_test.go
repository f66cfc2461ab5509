package benchmark_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

func Test_Measure_When_FnSucceeds_Then_ElapsedAndAffectedAreReported(t *testing.T) {
	// act
	outcome, err := benchmark.Measure("memory", benchmark.OperationRead, func() (int, error) {
		time.Sleep(2 * time.Millisecond)
		return 1, nil
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Affected)
	assert.GreaterOrEqual(t, outcome.Elapsed, 2*time.Millisecond)
}

func Test_Measure_When_FnFails_Then_BackendErrorIsReturned(t *testing.T) {
	// setup
	cause := errors.New("connection reset")

	// act
	outcome, err := benchmark.Measure("postgres", benchmark.OperationUpdate, func() (int, error) {
		return 3, cause
	})

	// assert
	require.Error(t, err)
	assert.Equal(t, 0, outcome.Affected)
	assert.ErrorIs(t, err, benchmark.ErrBackendOperationFailed)
	assert.ErrorIs(t, err, cause)

	var backendErr *benchmark.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "postgres", backendErr.Backend)
	assert.Equal(t, benchmark.OperationUpdate, backendErr.Operation)
}

func Test_NewBackendError_When_AlreadyWrapped_Then_ItIsNotWrappedTwice(t *testing.T) {
	// setup
	inner := benchmark.NewBackendError("bolt", benchmark.OperationWrite, benchmark.ErrDuplicateKey)

	// act
	err := benchmark.NewBackendError("bolt", benchmark.OperationClear, inner)

	// assert
	assert.Same(t, inner, err)
	assert.Nil(t, benchmark.NewBackendError("bolt", benchmark.OperationWrite, nil))
}

func Test_ToMilliseconds(t *testing.T) {
	assert.Equal(t, 1.235, benchmark.ToMilliseconds(1234567*time.Nanosecond))
	assert.Equal(t, 0.0, benchmark.ToMilliseconds(0))
}
