package postgresengine_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/postgresengine"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/backendtest"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/containers"
)

func Test_PostgresBackend_Contract(t *testing.T) {
	dsn := containers.PostgresDSN(t)

	factories := map[string]func(t *testing.T, options ...postgresengine.Option) *postgresengine.Backend{
		"pgx.pool": func(t *testing.T, options ...postgresengine.Option) *postgresengine.Backend {
			poolConfig, err := config.PostgresPGXPoolConfig(dsn)
			require.NoError(t, err)
			pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
			require.NoError(t, err)
			backend, err := postgresengine.NewBackendFromPGXPool(pool, options...)
			require.NoError(t, err)

			return backend
		},
		"sql.db": func(t *testing.T, options ...postgresengine.Option) *postgresengine.Backend {
			db, err := config.PostgresSQLDB(context.Background(), dsn)
			require.NoError(t, err)
			backend, err := postgresengine.NewBackendFromSQLDB(db, options...)
			require.NoError(t, err)

			return backend
		},
		"sqlx.db": func(t *testing.T, options ...postgresengine.Option) *postgresengine.Backend {
			db, err := config.PostgresSQLX(context.Background(), dsn)
			require.NoError(t, err)
			backend, err := postgresengine.NewBackendFromSQLX(db, options...)
			require.NoError(t, err)

			return backend
		},
	}

	for adapter, newBackend := range factories {
		t.Run(adapter, func(t *testing.T) {
			backendtest.RunContract(t, func(t *testing.T) benchmark.Backend {
				ctx := context.Background()
				backend := newBackend(t, postgresengine.WithBatchSize(7))
				require.NoError(t, backend.EnsureSchema(ctx))
				require.NoError(t, backend.ClearAll(ctx))
				t.Cleanup(func() { _ = backend.Close() })

				return backend
			})
		})
	}
}
