package boltengine_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/boltengine"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/backendtest"
)

func openBackend(t *testing.T, options ...boltengine.Option) *boltengine.Backend {
	t.Helper()

	backend, err := boltengine.Open(filepath.Join(t.TempDir(), "bench.bolt"), options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func Test_BoltBackend_Contract(t *testing.T) {
	backendtest.RunContract(t, func(t *testing.T) benchmark.Backend {
		return openBackend(t, boltengine.WithNoSync())
	})
}

func Test_Open_When_OptionIsInvalid_Then_ErrorIsReturned(t *testing.T) {
	// act
	_, bucketErr := boltengine.Open(filepath.Join(t.TempDir(), "a.bolt"), boltengine.WithBucketName(""))
	_, nameErr := boltengine.Open(filepath.Join(t.TempDir(), "b.bolt"), boltengine.WithName(""))

	// assert
	assert.ErrorIs(t, bucketErr, benchmark.ErrEmptyTableName)
	assert.ErrorIs(t, nameErr, benchmark.ErrEmptyBackendName)
}

func Test_PointUpdate_When_NewEmailIsTaken_Then_NothingChanges(t *testing.T) {
	// setup
	ctx := context.Background()
	backend := openBackend(t)
	records, err := benchmark.NewGenerator().Generate(3)
	require.NoError(t, err)
	_, err = backend.BulkWrite(ctx, records)
	require.NoError(t, err)

	// act
	_, err = backend.PointUpdate(ctx, benchmark.BaseEmail(0), benchmark.BaseEmail(2))

	// assert
	assert.ErrorIs(t, err, benchmark.ErrDuplicateKey)
	count, countErr := backend.Count()
	require.NoError(t, countErr)
	assert.Equal(t, 3, count)
}

func Test_NamedQuery_When_RecordsAreInactive_Then_InactivityQueryFindsThem(t *testing.T) {
	// setup
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	backend := openBackend(t, boltengine.WithClock(func() time.Time { return now.AddDate(1, 0, 0) }))
	records, err := benchmark.NewGenerator(benchmark.WithClock(func() time.Time { return now })).Generate(300)
	require.NoError(t, err)
	active := 0
	for _, record := range records {
		if record.Status == benchmark.StatusActive {
			active++
		}
	}
	_, err = backend.BulkWrite(ctx, records)
	require.NoError(t, err)

	// act
	outcome, err := backend.NamedQuery(ctx, benchmark.QueryInactivity)

	// assert
	require.NoError(t, err)
	assert.Equal(t, min(active, benchmark.InactivityResultLimit), outcome.Affected)
}

func Test_Open_When_FileIsReopened_Then_RecordsSurvive(t *testing.T) {
	// setup
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bench.bolt")
	backend, err := boltengine.Open(path)
	require.NoError(t, err)
	records, err := benchmark.NewGenerator().Generate(5)
	require.NoError(t, err)
	_, err = backend.BulkWrite(ctx, records)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	// act
	reopened, err := boltengine.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	// assert
	read, err := reopened.PointRead(ctx, benchmark.BaseEmail(4))
	require.NoError(t, err)
	assert.Equal(t, 1, read.Affected)
}
