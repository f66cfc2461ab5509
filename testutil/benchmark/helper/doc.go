// Package helper provides test doubles for the benchmark harness: a slog handler spy,
// metrics and tracing collector spies and a Backend spy with failure injection.
package helper
