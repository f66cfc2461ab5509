package neo4jengine_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/neo4jengine"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/backendtest"
)

func Test_NewBackend_When_DriverIsNil_Then_ErrorIsReturned(t *testing.T) {
	// act
	_, err := neo4jengine.NewBackend(nil)

	// assert
	assert.ErrorIs(t, err, benchmark.ErrNilDatabaseConnection)
}

func Test_Neo4jBackend_Contract(t *testing.T) {
	if os.Getenv("BENCH_NEO4J_URI") == "" {
		t.Skip("BENCH_NEO4J_URI not set")
	}

	backendtest.RunContract(t, func(t *testing.T) benchmark.Backend {
		ctx := context.Background()
		user, password := config.Neo4jCredentials()

		driver, err := config.Neo4jDriver(ctx, config.Neo4jURI(), user, password)
		require.NoError(t, err)

		backend, err := neo4jengine.NewBackend(driver, neo4jengine.WithLabel("BenchUser"), neo4jengine.WithBatchSize(7))
		require.NoError(t, err)
		require.NoError(t, backend.EnsureSchema(ctx))
		require.NoError(t, backend.ClearAll(ctx))
		t.Cleanup(func() { _ = backend.Close() })

		return backend
	})
}
