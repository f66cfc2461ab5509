package harness

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

// RunFailure records a repeated run that was aborted by a backend failure.
type RunFailure struct {
	Run   int
	Scale int
	Err   error
}

// SweepSummary is the result of a scale sweep.
type SweepSummary struct {
	Report        benchmark.Report
	CompletedRuns int
	Failures      []RunFailure
}

// Sweep measures every configured scale, Runs times.
//
// Per run and scale the backend is cleared, loaded with a fresh batch and then probed: every
// sampled record is read, renamed to its "updated_" email and the renamed record deleted, after
// which the three named queries run. The sampled read, update and delete durations are averaged
// into one observation per run. A backend failure aborts the rest of the current run, the
// observations of the failed scale are discarded and the sweep continues with the next run.
func (h *Harness) Sweep(ctx context.Context) (SweepSummary, error) {
	aggregator := benchmark.NewAggregator()
	summary := SweepSummary{}

	for run := 0; run < h.cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			summary.Report = aggregator.Finalize()
			return summary, err
		}

		failure, err := h.sweepRun(ctx, run, aggregator)
		if err != nil {
			summary.Report = aggregator.Finalize()
			return summary, err
		}

		if failure != nil {
			summary.Failures = append(summary.Failures, *failure)
			continue
		}

		summary.CompletedRuns++
	}

	summary.Report = aggregator.Finalize()

	h.logInfo(ctx, logMsgSweepFinished,
		logAttrBackend, h.backend.Name(),
		"completed_runs", summary.CompletedRuns,
		logAttrFailures, len(summary.Failures),
	)

	return summary, nil
}

// sweepRun measures all scales once. A non-nil RunFailure means the run was aborted,
// a non-nil error is fatal to the whole sweep.
func (h *Harness) sweepRun(ctx context.Context, run int, aggregator *benchmark.Aggregator) (*RunFailure, error) {
	runCtx, span := h.startSpan(ctx, spanNameSweepRun, map[string]string{labelRun: strconv.Itoa(run)})

	h.logInfo(runCtx, logMsgRunStarted, logAttrBackend, h.backend.Name(), logAttrRun, run)

	for _, scale := range h.cfg.Scales {
		results, err := h.measureScale(runCtx, run, scale)
		if err != nil {
			h.finishSpan(span, err, map[string]string{labelScale: strconv.Itoa(scale)})

			if isFatal(ctx, err) {
				return nil, err
			}

			h.logError(runCtx, logMsgRunAborted, err,
				logAttrBackend, h.backend.Name(),
				logAttrRun, run,
				logAttrScale, scale,
			)
			h.incrementCounter(runCtx, metricAbortedRuns, map[string]string{
				labelBackend: h.backend.Name(),
				labelScale:   strconv.Itoa(scale),
			})

			return &RunFailure{Run: run, Scale: scale, Err: err}, nil
		}

		aggregator.RecordResults(results...)
	}

	h.logInfo(runCtx, logMsgRunCompleted, logAttrBackend, h.backend.Name(), logAttrRun, run)
	h.finishSpan(span, nil, nil)

	return nil, nil
}

// measureScale runs the per-scale protocol and returns one result per measured operation.
// Nothing is returned unless the whole scale succeeded.
func (h *Harness) measureScale(ctx context.Context, run, scale int) ([]benchmark.Result, error) {
	ctx, span := h.startSpan(ctx, spanNameSweepScale, map[string]string{
		labelRun:   strconv.Itoa(run),
		labelScale: strconv.Itoa(scale),
	})

	results, err := h.measureScaleSteps(ctx, scale)
	if err != nil {
		h.recordOperationError(ctx, phaseSweep, operationOf(err), classifyError(err))
	}

	h.finishSpan(span, err, nil)

	return results, err
}

func (h *Harness) measureScaleSteps(ctx context.Context, scale int) ([]benchmark.Result, error) {
	if err := h.backend.ClearAll(ctx); err != nil {
		return nil, err
	}

	records, err := h.generator.Generate(scale)
	if err != nil {
		return nil, err
	}

	results := make([]benchmark.Result, 0, len(benchmark.Operations()))

	written, err := h.backend.BulkWrite(ctx, records)
	if err != nil {
		return nil, err
	}
	h.observe(ctx, phaseSweep, scale, benchmark.OperationWrite, written)
	results = append(results, benchmark.Result{Scale: scale, Operation: benchmark.OperationWrite, Duration: written.Elapsed})

	samples := h.cfg.SampleIndices(scale)
	reads := make([]time.Duration, 0, len(samples))
	updates := make([]time.Duration, 0, len(samples))
	deletes := make([]time.Duration, 0, len(samples))

	for _, idx := range samples {
		email := records[idx].Email
		updatedEmail := benchmark.UpdatedEmail(email)

		read, readErr := h.backend.PointRead(ctx, email)
		if readErr != nil {
			return nil, readErr
		}
		h.observe(ctx, phaseSweep, scale, benchmark.OperationRead, read)
		reads = append(reads, read.Elapsed)

		updated, updateErr := h.backend.PointUpdate(ctx, email, updatedEmail)
		if updateErr != nil {
			return nil, updateErr
		}
		h.observe(ctx, phaseSweep, scale, benchmark.OperationUpdate, updated)
		updates = append(updates, updated.Elapsed)

		deleted, deleteErr := h.backend.PointDelete(ctx, updatedEmail)
		if deleteErr != nil {
			return nil, deleteErr
		}
		h.observe(ctx, phaseSweep, scale, benchmark.OperationDelete, deleted)
		deletes = append(deletes, deleted.Elapsed)
	}

	if len(samples) > 0 {
		results = append(results,
			benchmark.Result{Scale: scale, Operation: benchmark.OperationRead, Duration: benchmark.MeanDuration(reads)},
			benchmark.Result{Scale: scale, Operation: benchmark.OperationUpdate, Duration: benchmark.MeanDuration(updates)},
			benchmark.Result{Scale: scale, Operation: benchmark.OperationDelete, Duration: benchmark.MeanDuration(deletes)},
		)
	}

	for _, kind := range benchmark.QueryKinds() {
		queried, queryErr := h.backend.NamedQuery(ctx, kind)
		if queryErr != nil {
			return nil, queryErr
		}
		h.observe(ctx, phaseSweep, scale, kind.Operation(), queried)
		results = append(results, benchmark.Result{Scale: scale, Operation: kind.Operation(), Duration: queried.Elapsed})
	}

	h.logInfo(ctx, logMsgScaleAverages,
		logAttrBackend, h.backend.Name(),
		logAttrScale, scale,
		logAttrWriteMS, benchmark.ToMilliseconds(written.Elapsed),
		logAttrReadMS, benchmark.ToMilliseconds(benchmark.MeanDuration(reads)),
		logAttrUpdateMS, benchmark.ToMilliseconds(benchmark.MeanDuration(updates)),
		logAttrDeleteMS, benchmark.ToMilliseconds(benchmark.MeanDuration(deletes)),
	)

	return results, nil
}
