package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/boltengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/memengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/mongoengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/neo4jengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/postgresengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/sqliteengine"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
)

// schemaEnsurer is implemented by backends that need tables, constraints or indexes before the first run.
type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// newBackend creates the configured backend and makes sure its schema exists.
// On a schema failure the backend is closed again.
func newBackend(ctx context.Context, cfg Config, logger *slog.Logger) (benchmark.Backend, error) {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if ensurer, ok := backend.(schemaEnsurer); ok {
		if schemaErr := ensurer.EnsureSchema(ctx); schemaErr != nil {
			return nil, errors.Join(schemaErr, backend.Close())
		}
	}

	return backend, nil
}

func openBackend(ctx context.Context, cfg Config, logger *slog.Logger) (benchmark.Backend, error) {
	switch cfg.Backend {
	case backendMemory:
		return memengine.NewBackend(memengine.WithLogger(logger))

	case backendPostgres, backendCockroach:
		return openPostgresBackend(ctx, cfg, postgresengine.WithName(cfg.Backend), postgresengine.WithLogger(logger))

	case backendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = sqliteengine.InMemory
		}

		db, err := sqliteengine.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		backend, err := sqliteengine.NewBackend(db, sqliteengine.WithLogger(logger))

		return closeOnFailure(backend, err, db.Close)

	case backendBolt:
		return boltengine.Open(cfg.BoltPath, boltengine.WithLogger(logger))

	case backendNeo4j:
		user, password := config.Neo4jCredentials()

		driver, err := config.Neo4jDriver(ctx, cfg.Neo4jURI, user, password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
		}

		backend, err := neo4jengine.NewBackend(driver, neo4jengine.WithDatabase(cfg.Neo4jDB), neo4jengine.WithLogger(logger))

		return closeOnFailure(backend, err, func() error { return driver.Close(context.WithoutCancel(ctx)) })

	case backendMongo:
		client, err := config.MongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}

		backend, err := mongoengine.NewBackend(client, mongoengine.WithDatabase(cfg.MongoDB), mongoengine.WithLogger(logger))

		return closeOnFailure(backend, err, func() error { return client.Disconnect(context.WithoutCancel(ctx)) })

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// openPostgresBackend connects through the configured adapter. The backend owns the connection.
func openPostgresBackend(ctx context.Context, cfg Config, options ...postgresengine.Option) (benchmark.Backend, error) {
	switch cfg.DBAdapter {
	case adapterPGX:
		poolConfig, err := config.PostgresPGXPoolConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}

		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", pingErr)
		}

		backend, err := postgresengine.NewBackendFromPGXPool(pool, options...)

		return closeOnFailure(backend, err, func() error {
			pool.Close()
			return nil
		})

	case adapterSQL, "sql.db":
		db, err := config.PostgresSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		backend, err := postgresengine.NewBackendFromSQLDB(db, options...)

		return closeOnFailure(backend, err, db.Close)

	case adapterSQLX:
		db, err := config.PostgresSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		backend, err := postgresengine.NewBackendFromSQLX(db, options...)

		return closeOnFailure(backend, err, db.Close)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, cfg.DBAdapter)
	}
}

// closeOnFailure hands out the backend or, when its constructor failed, releases the connection
// the backend would have owned.
func closeOnFailure[B benchmark.Backend](backend B, err error, closeConn func() error) (benchmark.Backend, error) {
	if err != nil {
		return nil, errors.Join(err, closeConn())
	}

	return backend, nil
}
