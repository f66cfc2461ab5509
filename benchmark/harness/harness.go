package harness

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const cleanupTimeout = 30 * time.Second

// Harness drives one benchmark.Backend through warm-up, scale sweep, latency probe and concurrency simulation.
type Harness struct {
	backend          benchmark.Backend
	cfg              Config
	generator        *benchmark.Generator
	logger           benchmark.Logger
	contextualLogger benchmark.ContextualLogger
	metricsCollector benchmark.MetricsCollector
	tracingCollector benchmark.TracingCollector
}

// RunSummary is everything one complete Run produced.
// Sections that were skipped stay nil.
type RunSummary struct {
	Backend     string
	Sweep       *SweepSummary
	Probe       *LatencyProbe
	Concurrency *ConcurrencyReport
	Queries     *QuerySummary
}

// New creates a Harness for the backend. The configuration is validated and copied.
func New(backend benchmark.Backend, cfg Config, options ...Option) (*Harness, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Harness{
		backend:   backend,
		cfg:       cfg.clone(),
		generator: benchmark.NewGenerator(),
	}

	for _, option := range options {
		if err := option(h); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Config returns a copy of the run configuration.
func (h *Harness) Config() Config {
	return h.cfg.clone()
}

// Run executes the complete protocol and takes ownership of the backend:
// a final ClearAll and Close happen on every exit path.
// With QueriesOnly set only MeasureQueries runs and the final ClearAll is left out.
//
// A GenerationError or context cancellation ends Run with an error. Backend failures inside the sweep
// abort only the affected run and are reported in the summary. A failed latency probe is logged and skipped.
func (h *Harness) Run(ctx context.Context) (summary RunSummary, err error) {
	summary.Backend = h.backend.Name()

	defer h.shutdown(ctx)

	if h.cfg.QueriesOnly {
		queries, queriesErr := h.MeasureQueries(ctx)
		summary.Queries = &queries

		return summary, queriesErr
	}

	if !h.cfg.SkipWarmup {
		h.WarmUp(ctx)
	}

	if !h.cfg.SkipSweep {
		sweep, sweepErr := h.Sweep(ctx)
		summary.Sweep = &sweep
		if sweepErr != nil {
			return summary, sweepErr
		}
	}

	if !h.cfg.SkipLatencyProbe {
		probe, probeErr := h.ProbeLatency(ctx)
		switch {
		case probeErr == nil:
			summary.Probe = &probe
		case isFatal(ctx, probeErr):
			return summary, probeErr
		default:
			h.logWarn(ctx, logMsgProbeFailed, probeErr, logAttrBackend, h.backend.Name())
		}
	}

	if !h.cfg.SkipConcurrency {
		report, concurrencyErr := h.SimulateConcurrency(ctx)
		summary.Concurrency = &report
		if concurrencyErr != nil {
			return summary, concurrencyErr
		}
	}

	return summary, nil
}

// shutdown clears and closes the backend, even when ctx is already canceled.
// Existing data measured in QueriesOnly mode is kept.
func (h *Harness) shutdown(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if !h.cfg.QueriesOnly {
		if err := h.backend.ClearAll(cleanupCtx); err != nil {
			h.logWarn(cleanupCtx, logMsgCleanupFailed, err, logAttrBackend, h.backend.Name())
		}
	}

	if err := h.backend.Close(); err != nil {
		h.logWarn(cleanupCtx, logMsgCloseFailed, err, logAttrBackend, h.backend.Name())
	}
}

// isFatal reports whether err must end the whole benchmark instead of a single run.
func isFatal(ctx context.Context, err error) bool {
	var generationErr *benchmark.GenerationError
	if errors.As(err, &generationErr) {
		return true
	}

	if ctx.Err() != nil {
		return true
	}

	var backendErr *benchmark.BackendError

	return !errors.As(err, &backendErr)
}

func classifyError(err error) string {
	var generationErr *benchmark.GenerationError
	switch {
	case errors.As(err, &generationErr):
		return errorTypeGeneration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorTypeCanceled
	default:
		return errorTypeBackend
	}
}

// operationOf returns the operation a backend failure happened in.
func operationOf(err error) benchmark.Operation {
	var backendErr *benchmark.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Operation
	}

	return benchmark.Operation("none")
}
