package mongoengine_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/mongoengine"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/backendtest"
)

// lazyClient returns a client that has not dialed yet, enough to exercise the constructor.
func lazyClient(t *testing.T) *mongo.Client {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client
}

func Test_NewBackend_When_ClientIsNil_Then_ErrorIsReturned(t *testing.T) {
	// act
	_, err := mongoengine.NewBackend(nil)

	// assert
	assert.ErrorIs(t, err, benchmark.ErrNilDatabaseConnection)
}

func Test_NewBackend_When_OptionIsInvalid_Then_ErrorIsReturned(t *testing.T) {
	client := lazyClient(t)

	for name, option := range map[string]mongoengine.Option{
		"empty database":        mongoengine.WithDatabase(""),
		"empty collection":      mongoengine.WithCollection(""),
		"empty name":            mongoengine.WithName(""),
		"zero rollback batches": mongoengine.WithRollbackBatchSize(0),
	} {
		t.Run(name, func(t *testing.T) {
			// act
			backend, err := mongoengine.NewBackend(client, option)

			// assert
			assert.Error(t, err)
			assert.Nil(t, backend)
		})
	}
}

func Test_NewBackend_When_NameIsSet_Then_ItIsReported(t *testing.T) {
	// act
	backend, err := mongoengine.NewBackend(lazyClient(t), mongoengine.WithName("mongo-replica"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "mongo-replica", backend.Name())
}

func Test_MongoBackend_Contract(t *testing.T) {
	if os.Getenv(config.EnvMongoURI) == "" {
		t.Skip(config.EnvMongoURI + " not set")
	}

	backendtest.RunContract(t, func(t *testing.T) benchmark.Backend {
		ctx := context.Background()

		client, err := config.MongoClient(ctx, config.MongoURI())
		require.NoError(t, err)

		backend, err := mongoengine.NewBackend(
			client,
			mongoengine.WithCollection("bench_users"),
			mongoengine.WithRollbackBatchSize(3),
		)
		require.NoError(t, err)
		require.NoError(t, backend.EnsureSchema(ctx))
		require.NoError(t, backend.ClearAll(ctx))
		t.Cleanup(func() { _ = backend.Close() })

		return backend
	})
}
