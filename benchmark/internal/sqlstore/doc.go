// Package sqlstore implements benchmark.Backend on top of an adapters.DBAdapter.
//
// The SQL engines differ only in their goqu dialect, the text of the three named queries,
// how timestamps are bound and how a unique violation is recognized. Those differences are
// supplied as a Dialect, everything else (batching, timing, error wrapping, logging) lives here.
package sqlstore
