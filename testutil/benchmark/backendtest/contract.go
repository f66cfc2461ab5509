// Package backendtest holds the behavioral contract every benchmark.Backend implementation is tested against.
package backendtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

// Factory creates a fresh, empty backend. It registers its own cleanup with t.
type Factory func(t *testing.T) benchmark.Backend

// RunContract runs the shared Backend behavior tests as sub-tests of t.
//
//nolint:funlen
func RunContract(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("bulk_write_then_point_read_finds_every_sampled_record", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		records := generate(t, 50)

		// act
		written, err := backend.BulkWrite(ctx, records)

		// assert
		require.NoError(t, err)
		assert.Equal(t, 50, written.Affected)
		for _, idx := range []int{0, 16, 25, 33, 49} {
			read, readErr := backend.PointRead(ctx, records[idx].Email)
			require.NoError(t, readErr)
			assert.Equal(t, 1, read.Affected, records[idx].Email)
		}
	})

	t.Run("point_update_moves_the_record_to_the_new_email", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 10))
		oldEmail := benchmark.BaseEmail(3)
		newEmail := benchmark.UpdatedEmail(oldEmail)

		// act
		updated, err := backend.PointUpdate(ctx, oldEmail, newEmail)

		// assert
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Affected)
		assert.Equal(t, 0, mustRead(t, backend, oldEmail))
		assert.Equal(t, 1, mustRead(t, backend, newEmail))
	})

	t.Run("point_delete_of_the_updated_email_removes_it", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 10))
		newEmail := benchmark.UpdatedEmail(benchmark.BaseEmail(5))
		_, err := backend.PointUpdate(ctx, benchmark.BaseEmail(5), newEmail)
		require.NoError(t, err)

		// act
		deleted, deleteErr := backend.PointDelete(ctx, newEmail)

		// assert
		require.NoError(t, deleteErr)
		assert.Equal(t, 1, deleted.Affected)
		assert.Equal(t, 0, mustRead(t, backend, newEmail))
		assert.Equal(t, 1, mustRead(t, backend, benchmark.BaseEmail(4)))
	})

	t.Run("point_update_of_a_missing_email_affects_nothing", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 3))

		// act
		updated, err := backend.PointUpdate(ctx, "nobody@example.com", "still-nobody@example.com")

		// assert
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Affected)
		assert.Equal(t, 0, mustRead(t, backend, "still-nobody@example.com"))
	})

	t.Run("point_delete_of_a_missing_email_affects_nothing", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)

		// act
		deleted, err := backend.PointDelete(ctx, "nobody@example.com")

		// assert
		require.NoError(t, err)
		assert.Equal(t, 0, deleted.Affected)
	})

	t.Run("bulk_write_with_a_duplicate_email_writes_nothing", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 5))

		// arrange
		batch := generate(t, 5, benchmark.EmailPrefix("second_"))
		batch = append(batch, generate(t, 1)...)

		// act
		_, err := backend.BulkWrite(ctx, batch)

		// assert
		require.Error(t, err)
		assert.ErrorIs(t, err, benchmark.ErrBackendOperationFailed)
		var backendErr *benchmark.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, benchmark.OperationWrite, backendErr.Operation)
		assert.Equal(t, 0, mustRead(t, backend, "second_"+benchmark.BaseEmail(0)))
	})

	t.Run("clear_all_is_idempotent_and_leaves_nothing_behind", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 20))

		// act
		firstErr := backend.ClearAll(ctx)
		secondErr := backend.ClearAll(ctx)

		// assert
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.Equal(t, 0, mustRead(t, backend, benchmark.BaseEmail(0)))
		retention, err := backend.NamedQuery(ctx, benchmark.QueryRetention)
		require.NoError(t, err)
		assert.Equal(t, 0, retention.Affected)

		// a cleared backend accepts the same batch again
		writeAll(t, backend, generate(t, 20))
	})

	t.Run("named_queries_return_rows_for_a_generated_batch", func(t *testing.T) {
		// setup
		ctx := context.Background()
		backend := newBackend(t)
		writeAll(t, backend, generate(t, 200))

		// act
		retention, retentionErr := backend.NamedQuery(ctx, benchmark.QueryRetention)
		demographic, demographicErr := backend.NamedQuery(ctx, benchmark.QueryDemographic)
		inactivity, inactivityErr := backend.NamedQuery(ctx, benchmark.QueryInactivity)

		// assert
		require.NoError(t, retentionErr)
		require.NoError(t, demographicErr)
		require.NoError(t, inactivityErr)
		assert.Positive(t, retention.Affected)
		assert.Positive(t, demographic.Affected)
		assert.LessOrEqual(t, demographic.Affected, 20, "at most 10 countries times 2 statuses")
		assert.Equal(t, 0, inactivity.Affected, "generated last logins are at most 90 days old")
	})

	t.Run("named_query_of_an_unknown_kind_fails", func(t *testing.T) {
		// setup
		backend := newBackend(t)

		// act
		_, err := backend.NamedQuery(context.Background(), benchmark.QueryKind("bogus"))

		// assert
		assert.ErrorIs(t, err, benchmark.ErrBackendOperationFailed)
	})

	t.Run("canceled_context_fails_the_operation", func(t *testing.T) {
		// setup
		backend := newBackend(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// act
		_, err := backend.PointRead(ctx, benchmark.BaseEmail(0))

		// assert
		assert.ErrorIs(t, err, benchmark.ErrBackendOperationFailed)
	})
}

func generate(t *testing.T, n int, transforms ...benchmark.EmailTransform) []benchmark.Record {
	t.Helper()

	records, err := benchmark.NewGenerator().Generate(n, transforms...)
	require.NoError(t, err)

	return records
}

func writeAll(t *testing.T, backend benchmark.Backend, records []benchmark.Record) {
	t.Helper()

	outcome, err := backend.BulkWrite(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, len(records), outcome.Affected)
}

func mustRead(t *testing.T, backend benchmark.Backend, email string) int {
	t.Helper()

	outcome, err := backend.PointRead(context.Background(), email)
	require.NoError(t, err)

	return outcome.Affected
}
