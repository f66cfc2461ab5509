package containers

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
)

const (
	postgresImage    = "postgres:17.5-alpine"
	postgresPort     = "5432/tcp"
	postgresPassword = "benchmark"
	postgresReadyLog = "database system is ready to accept connections"
)

// PostgresDSN returns a DSN for integration tests.
// An explicit BENCH_POSTGRES_DSN is used as is. Otherwise a PostgreSQL container is started and
// terminated when the test ends. Without a reachable Docker daemon the test is skipped.
func PostgresDSN(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv(config.EnvPostgresDSN); dsn != "" {
		return dsn
	}

	if testing.Short() {
		t.Skip("skipping PostgreSQL container in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{postgresPort},
			Env: map[string]string{
				"POSTGRES_PASSWORD": postgresPassword,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog(postgresReadyLog).WithOccurrence(2),
				wait.ForListeningPort(postgresPort),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("starting PostgreSQL container failed: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolving container host failed: %v", err)
	}

	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		t.Fatalf("resolving container port failed: %v", err)
	}

	return fmt.Sprintf("postgres://postgres:%s@%s:%s/postgres?sslmode=disable", postgresPassword, host, port.Port())
}
