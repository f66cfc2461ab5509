package harness

import "github.com/AntonStoeckl/backend-benchmark-go/benchmark"

// Option defines a functional option for configuring Harness.
type Option func(*Harness) error

// WithLogger sets the logger for the Harness.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: every single measured operation with its duration
// Info level: phase progress and the per-scale averages of each run
// Warn level: swallowed warm-up and cleanup failures
// Error level: failures that abort a repeated run or the concurrency simulation.
func WithLogger(logger benchmark.Logger) Option {
	return func(h *Harness) error {
		h.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Harness.
// Messages carry the context of the current phase span, enabling trace correlation.
func WithContextualLogger(logger benchmark.ContextualLogger) Option {
	return func(h *Harness) error {
		h.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Harness.
// It receives every measured duration, error counters and the virtual-user level.
func WithMetrics(collector benchmark.MetricsCollector) Option {
	return func(h *Harness) error {
		h.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Harness.
// Spans are created for the warm-up, each sweep run, each scale and each concurrency level.
func WithTracing(collector benchmark.TracingCollector) Option {
	return func(h *Harness) error {
		h.tracingCollector = collector
		return nil
	}
}

// WithGenerator replaces the default record generator.
func WithGenerator(generator *benchmark.Generator) Option {
	return func(h *Harness) error {
		if generator != nil {
			h.generator = generator
		}

		return nil
	}
}
