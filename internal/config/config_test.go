package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
)

func Test_MongoURI_When_EnvIsSet_Then_ItWinsOverTheDefault(t *testing.T) {
	// setup
	t.Setenv(config.EnvMongoURI, "mongodb://mongo.internal:27017")

	// act
	uri := config.MongoURI()

	// assert
	assert.Equal(t, "mongodb://mongo.internal:27017", uri)
}

func Test_MongoURI_When_EnvIsEmpty_Then_LocalDefaultIsUsed(t *testing.T) {
	// setup
	t.Setenv(config.EnvMongoURI, "")
	t.Setenv("BENCH_MONGO_DATABASE", "")

	// act
	uri := config.MongoURI()

	// assert
	assert.Equal(t, "mongodb://localhost:27017", uri)
	assert.Equal(t, "benchmark", config.MongoDatabase())
}

func Test_MongoClientOptions_When_Built_Then_PoolIsSizedForTheSimulator(t *testing.T) {
	// act
	opts := config.MongoClientOptions("mongodb://localhost:27017")

	// assert
	assert.NoError(t, opts.Validate())
	assert.Equal(t, uint64(50), *opts.MaxPoolSize)
	assert.Equal(t, uint64(2), *opts.MinPoolSize)
	assert.Equal(t, 5*time.Second, *opts.ConnectTimeout)
}

func Test_PostgresDSN_When_BothVariablesAreSet_Then_TheExplicitDSNWins(t *testing.T) {
	// setup
	t.Setenv(config.EnvPostgresDSN, "postgres://explicit")
	t.Setenv("DATABASE_URL", "postgres://fallback")

	// act
	dsn := config.PostgresDSN()

	// assert
	assert.Equal(t, "postgres://explicit", dsn)
}
