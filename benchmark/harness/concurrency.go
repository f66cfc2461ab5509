package harness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

// LevelResult is the outcome of one concurrency level.
type LevelResult struct {
	Threads int

	// Durations holds the duration of every successful operation per virtual user.
	Durations map[benchmark.Operation][]time.Duration

	// Means is the arithmetic mean of Durations per operation, 0 without observations.
	Means map[benchmark.Operation]time.Duration

	// Failures is the number of virtual users that did not finish their cycle.
	Failures int

	// Err is set when the level failed as a whole, e.g. because the backend could not be cleared.
	Err error
}

// ConcurrencyReport is the result of a concurrency simulation.
type ConcurrencyReport struct {
	Records int
	Levels  []LevelResult

	// Overall is the mean of the per-level means per operation, failed levels excluded.
	Overall map[benchmark.Operation]time.Duration
}

// virtualUserResult is what a single virtual user hands back after the barrier.
type virtualUserResult struct {
	durations map[benchmark.Operation]time.Duration
	err       error
}

// virtualUserPrefix returns the email prefix of virtual user k. User 0 writes the base emails.
func virtualUserPrefix(k int) string {
	if k == 0 {
		return ""
	}

	return fmt.Sprintf("vu%d_", k)
}

// SimulateConcurrency runs the CRUD cycle with 1..MaxVirtualUsers simultaneous virtual users.
//
// Every level starts from an empty backend. Each virtual user bulk-writes its own copy of the
// dataset, then reads, renames and deletes the one shared target record. The races on that
// target are intended contention. A failing virtual user is logged and excluded from the means.
// A backend failure of the level itself, such as a failed clear, marks the level as failed and
// the simulation goes on with the next level. Only fatal errors end it early.
func (h *Harness) SimulateConcurrency(ctx context.Context) (ConcurrencyReport, error) {
	maxThreads := h.cfg.MaxVirtualUsers()
	report := ConcurrencyReport{
		Records: h.cfg.ConcurrencyRecords,
		Levels:  make([]LevelResult, 0, maxThreads),
	}

	for threads := 1; threads <= maxThreads; threads++ {
		level, err := h.runLevel(ctx, threads)
		if err != nil {
			if isFatal(ctx, err) {
				h.logError(ctx, logMsgConcurrencyFailed, err, logAttrBackend, h.backend.Name(), logAttrThreads, threads)
				report.Overall = overallMeans(report.Levels)

				return report, err
			}

			h.logWarn(ctx, logMsgLevelFailed, err, logAttrBackend, h.backend.Name(), logAttrThreads, threads)
			h.recordOperationError(ctx, phaseConcurrency, operationOf(err), classifyError(err))

			level.Threads = threads
			level.Err = err
		}

		report.Levels = append(report.Levels, level)
	}

	report.Overall = overallMeans(report.Levels)

	return report, nil
}

func (h *Harness) runLevel(ctx context.Context, threads int) (level LevelResult, err error) {
	ctx, span := h.startSpan(ctx, spanNameConcurrencyLevel, map[string]string{labelThreads: strconv.Itoa(threads)})
	defer func() {
		h.finishSpan(span, err, map[string]string{logAttrFailures: strconv.Itoa(level.Failures)})
	}()

	datasets := make([][]benchmark.Record, threads)
	for k := range datasets {
		if datasets[k], err = h.generator.Generate(h.cfg.ConcurrencyRecords, benchmark.EmailPrefix(virtualUserPrefix(k))); err != nil {
			return LevelResult{}, err
		}
	}

	if err = h.backend.ClearAll(ctx); err != nil {
		return LevelResult{Threads: threads, Failures: threads}, err
	}

	h.logInfo(ctx, logMsgLevelStarted, logAttrBackend, h.backend.Name(), logAttrThreads, threads)
	h.recordValue(ctx, metricVirtualUsers, float64(threads), map[string]string{labelBackend: h.backend.Name()})

	target := benchmark.BaseEmail(h.cfg.ConcurrencyRecords / 2)
	results := make([]virtualUserResult, threads)

	var group errgroup.Group
	for k := 0; k < threads; k++ {
		group.Go(func() error {
			results[k] = h.runVirtualUser(ctx, datasets[k], target)
			return nil
		})
	}
	_ = group.Wait()

	level = LevelResult{
		Threads:   threads,
		Durations: make(map[benchmark.Operation][]time.Duration),
		Means:     make(map[benchmark.Operation]time.Duration),
	}

	for k, result := range results {
		if result.err != nil {
			level.Failures++
			h.logWarn(ctx, logMsgVirtualUserFailed, result.err, logAttrThreads, threads, logAttrVU, k)
			h.recordOperationError(ctx, phaseConcurrency, operationOf(result.err), classifyError(result.err))
		}

		for _, op := range benchmark.CRUDOperations() {
			if d, ok := result.durations[op]; ok {
				level.Durations[op] = append(level.Durations[op], d)
			}
		}
	}

	for _, op := range benchmark.CRUDOperations() {
		level.Means[op] = benchmark.MeanDuration(level.Durations[op])
	}

	if err = ctx.Err(); err != nil {
		return level, err
	}

	if h.cfg.ClearBetweenLevels {
		if err = h.backend.ClearAll(ctx); err != nil {
			return level, err
		}
	}

	h.logInfo(ctx, logMsgLevelFinished,
		logAttrBackend, h.backend.Name(),
		logAttrThreads, threads,
		logAttrFailures, level.Failures,
		logAttrWriteMS, benchmark.ToMilliseconds(level.Means[benchmark.OperationWrite]),
		logAttrReadMS, benchmark.ToMilliseconds(level.Means[benchmark.OperationRead]),
		logAttrUpdateMS, benchmark.ToMilliseconds(level.Means[benchmark.OperationUpdate]),
		logAttrDeleteMS, benchmark.ToMilliseconds(level.Means[benchmark.OperationDelete]),
	)

	return level, nil
}

// runVirtualUser performs one sequential write, read, update, delete cycle.
// It stops at the first failure and keeps the durations measured so far.
func (h *Harness) runVirtualUser(ctx context.Context, records []benchmark.Record, target string) virtualUserResult {
	result := virtualUserResult{durations: make(map[benchmark.Operation]time.Duration, 4)}

	steps := []struct {
		operation benchmark.Operation
		fn        func() (benchmark.Outcome, error)
	}{
		{benchmark.OperationWrite, func() (benchmark.Outcome, error) { return h.backend.BulkWrite(ctx, records) }},
		{benchmark.OperationRead, func() (benchmark.Outcome, error) { return h.backend.PointRead(ctx, target) }},
		{benchmark.OperationUpdate, func() (benchmark.Outcome, error) {
			return h.backend.PointUpdate(ctx, target, benchmark.SharedUpdateTarget)
		}},
		{benchmark.OperationDelete, func() (benchmark.Outcome, error) {
			return h.backend.PointDelete(ctx, benchmark.SharedUpdateTarget)
		}},
	}

	for _, step := range steps {
		outcome, err := step.fn()
		if err != nil {
			result.err = err
			return result
		}

		h.observe(ctx, phaseConcurrency, len(records), step.operation, outcome)
		result.durations[step.operation] = outcome.Elapsed
	}

	return result
}

// overallMeans averages the per-level means of each operation over all levels that did not fail.
func overallMeans(levels []LevelResult) map[benchmark.Operation]time.Duration {
	overall := make(map[benchmark.Operation]time.Duration)

	for _, op := range benchmark.CRUDOperations() {
		means := make([]time.Duration, 0, len(levels))
		for _, level := range levels {
			if level.Err != nil {
				continue
			}
			means = append(means, level.Means[op])
		}

		overall[op] = benchmark.MeanDuration(means)
	}

	return overall
}
