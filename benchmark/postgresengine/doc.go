// Package postgresengine provides the PostgreSQL implementation of benchmark.Backend.
//
// Records live in one table with a UUID primary key and a unique email column.
// Bulk writes are split into multi-row INSERT statements of BatchSize rows that run in a single
// transaction, so a batch is written completely or not at all. The three named queries are the
// retention, demographic and inactivity aggregations, evaluated by the database.
//
// The engine supports three database adapters:
//   - pgx.Pool (NewBackendFromPGXPool)
//   - database/sql (NewBackendFromSQLDB)
//   - sqlx (NewBackendFromSQLX)
//
// CockroachDB speaks the PostgreSQL wire protocol and accepts the same SQL, run it through this
// engine with WithName("cockroach").
//
// Basic usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	backend, err := postgresengine.NewBackendFromPGXPool(pool, postgresengine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := backend.EnsureSchema(ctx); err != nil {
//		return err
//	}
//
// The backend owns the connection: Close closes the pool or database handle.
package postgresengine
