// Package sqliteengine provides an embedded SQLite implementation of benchmark.Backend.
//
// It runs on the pure-Go modernc.org/sqlite driver, so no cgo toolchain is needed. Timestamps are
// stored as UTC text in SQLite's own "YYYY-MM-DD HH:MM:SS" format, which keeps them comparable
// with date() and datetime() in the named queries.
//
// SQLite allows one writer at a time. Open limits the handle to a single connection, which
// also keeps an in-memory database alive for the lifetime of the handle.
package sqliteengine
