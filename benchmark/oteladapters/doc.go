// Package oteladapters provides OpenTelemetry implementations of the benchmark observability interfaces.
//
// Wire them into a harness with harness.WithMetrics, harness.WithTracing and
// harness.WithContextualLogger. Instruments are created lazily per metric name, durations are
// recorded in seconds as OpenTelemetry conventions expect.
package oteladapters
