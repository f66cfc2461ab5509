// Package benchmark provides the core abstractions shared by every part of the
// cross-backend benchmark harness.
//
// This package defines the "users" record model, the Backend contract that each
// storage engine implements, the synthetic record generator, the central timing
// utility and the result aggregator.
//
// Key types:
//   - Record: one synthetic user row
//   - Backend: the six-operation contract every storage engine fulfills
//   - Generator: produces deterministic-shaped synthetic records
//   - Aggregator / Report: collects timings and computes per-(scale, operation) means
//
// Common usage pattern:
//
//	generator := benchmark.NewGenerator()
//	records, err := generator.Generate(1000)
//	if err != nil {
//		// handle error
//	}
//
//	outcome, err := backend.BulkWrite(ctx, records)
//	if err != nil {
//		// handle error
//	}
//
//	aggregator := benchmark.NewAggregator()
//	aggregator.Record(1000, benchmark.OperationWrite, outcome.Elapsed)
//	report := aggregator.Finalize()
package benchmark
