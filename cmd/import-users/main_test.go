package main

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
	"github.com/AntonStoeckl/backend-benchmark-go/testutil/benchmark/containers"
)

func Test_FormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "12.5K", formatNumber(12500))
	assert.Equal(t, "250K", formatNumber(250000))
	assert.Equal(t, "1.5M", formatNumber(1500000))
}

func Test_ImportRecords_When_TableHoldsOldData_Then_ItIsReplaced(t *testing.T) {
	// setup
	ctx := context.Background()
	poolConfig, err := config.PostgresPGXPoolConfig(containers.PostgresDSN(t))
	require.NoError(t, err)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)
	defer pool.Close()

	generator := benchmark.NewGenerator()
	first, err := generator.Generate(30)
	require.NoError(t, err)
	second, err := generator.Generate(12, benchmark.EmailPrefix("second_"))
	require.NoError(t, err)

	// arrange
	_, err = importRecords(ctx, pool, "import_users", first)
	require.NoError(t, err)

	// act
	count, err := importRecords(ctx, pool, "import_users", second)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	var email string
	require.NoError(t, pool.QueryRow(ctx, "SELECT email FROM import_users WHERE email = $1", "second_user3@example.com").Scan(&email))
	assert.Equal(t, "second_user3@example.com", email)
}
