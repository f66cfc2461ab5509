// Package adapters provide database adapter implementations for the SQL benchmark engines.
//
// This package implements the adapter pattern to support several database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the PostgreSQL and SQLite engines can run the same
// statements against any supported connection type.
//
// Besides single statements, every adapter can execute a list of statements inside one
// transaction, which the engines use for all-or-nothing bulk writes.
package adapters
