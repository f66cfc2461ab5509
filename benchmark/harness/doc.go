// Package harness provides the benchmark orchestration engine.
//
// A Harness drives one injected benchmark.Backend through the full protocol:
//   - warm-up: a short insert/read/update/delete/aggregate workload that primes caches and connections
//   - scale sweep: repeated runs over increasing data scales, each measuring write, point read,
//     point update, point delete and the three named analytical queries
//   - latency probe: a single-record write and read
//   - concurrency simulation: fan-outs of 1..N virtual users running the same CRUD cycle at once
//
// In QueriesOnly mode all of this is replaced by MeasureQueries, which times the named queries
// against existing data and never clears the backend.
//
// The harness never branches on backend identity. Timing is taken by the engines through
// benchmark.Measure and aggregated here.
//
// Common usage pattern:
//
//	backend, err := memengine.NewBackend()
//	if err != nil {
//		// handle error
//	}
//
//	h, err := harness.New(backend, harness.DefaultConfig(), harness.WithLogger(slog.Default()))
//	if err != nil {
//		// handle error
//	}
//
//	summary, err := h.Run(ctx) // Run owns the backend and always closes it
package harness
