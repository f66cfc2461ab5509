// Package main implements the backend-bench command line tool.
//
// backend-bench runs the complete benchmark protocol against one storage backend: a warm-up,
// the scale sweep with repeated runs, the single-record latency probe and the concurrency
// simulation. The results are printed as text tables or as one JSON document.
//
// With -queries-only it instead measures the three named queries against the data the backend
// already holds, e.g. a dataset loaded by import-users, and leaves that data in place.
//
// ## Backends
//   - memory: the in-process reference backend
//   - postgres and cockroach: through pgx.Pool, sql.DB or sqlx.DB, switchable via -db-adapter or DB_ADAPTER
//   - sqlite: embedded, in-memory by default or file based via -sqlite-path
//   - bolt: embedded key-value store in the file given by -bolt-path
//   - neo4j: graph database, connection from -neo4j-uri and BENCH_NEO4J_USER / BENCH_NEO4J_PASSWORD
//   - mongo: document database, connection from -mongo-uri (BENCH_MONGO_URI) and -mongo-database
//
// ## Configuration
// Settings are resolved in this order, later ones win: built-in defaults, a YAML file given with
// -config, and explicitly set command line flags. A .env file in the working directory is loaded
// into the environment before anything else.
//
// ## Observability
// With -observability-enabled, metrics, traces and the harness log records are exported via OTLP gRPC.
// Log records go through the slog bridge and carry the trace and span IDs of the phase they belong to.
package main
