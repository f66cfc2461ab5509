// Package fixtures reads and writes synthetic user records as CSV files.
//
// The files are meant for loading large datasets into a database out of band, for example with
// PostgreSQL COPY, so the benchmark can be compared against a pre-populated table. Timestamps are
// written as RFC 3339 with nanoseconds, ids in canonical UUID form.
package fixtures
