package harness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	warmupStepInsert     = "insert"
	warmupStepReadAll    = "read all"
	warmupStepFiltered   = "filtered read"
	warmupStepAggregate  = "aggregate"
	warmupStepInactivity = "inactivity scan"
	warmupStepUpdate     = "update"
	warmupStepDelete     = "filtered delete"
	warmupStepClear      = "clear"
)

// warmupEmail returns the email of record i inserted in the given warm-up round.
func warmupEmail(round, i int) string {
	return benchmark.EmailPrefix(warmupPrefix(round))(benchmark.BaseEmail(i))
}

func warmupPrefix(round int) string {
	return fmt.Sprintf("warmup%d", round)
}

// WarmUp primes the backend with a short, representative workload and clears it again.
//
// Leftovers of an earlier, interrupted invocation are cleared first on a best-effort basis.
// It then inserts WarmupRounds batches of WarmupScale records, each with a "warmup{round}" email
// prefix, and runs a read-all scan, a filtered read, an aggregation, an inactivity scan, two updates on
// disjoint records and a filtered delete. Every failure is logged and swallowed.
func (h *Harness) WarmUp(ctx context.Context) {
	if h.cfg.WarmupRounds == 0 {
		return
	}

	ctx, span := h.startSpan(ctx, spanNameWarmup, map[string]string{
		labelScale: strconv.Itoa(h.cfg.WarmupScale),
	})

	start := time.Now()
	failures := 0

	h.logInfo(ctx, logMsgWarmupStarted,
		logAttrBackend, h.backend.Name(),
		logAttrScale, h.cfg.WarmupScale,
	)

	if err := h.backend.ClearAll(ctx); err != nil {
		h.logWarn(ctx, logMsgWarmupClearFailed, err, logAttrBackend, h.backend.Name())
	}

	for round := 0; round < h.cfg.WarmupRounds; round++ {
		records, err := h.generator.Generate(h.cfg.WarmupScale, benchmark.EmailPrefix(warmupPrefix(round)))
		if err != nil {
			failures++
			h.logWarn(ctx, logMsgWarmupStepFailed, err, logAttrStep, warmupStepInsert)
			continue
		}

		failures += h.warmupStep(ctx, warmupStepInsert, benchmark.OperationWrite, func() (benchmark.Outcome, error) {
			return h.backend.BulkWrite(ctx, records)
		})
	}

	lastRound := h.cfg.WarmupRounds - 1

	steps := []struct {
		name      string
		operation benchmark.Operation
		fn        func() (benchmark.Outcome, error)
	}{
		{warmupStepReadAll, benchmark.OperationRetentionQuery, func() (benchmark.Outcome, error) {
			return h.backend.NamedQuery(ctx, benchmark.QueryRetention)
		}},
		{warmupStepFiltered, benchmark.OperationRead, func() (benchmark.Outcome, error) {
			return h.backend.PointRead(ctx, warmupEmail(0, 0))
		}},
		{warmupStepAggregate, benchmark.OperationDemographicQuery, func() (benchmark.Outcome, error) {
			return h.backend.NamedQuery(ctx, benchmark.QueryDemographic)
		}},
		{warmupStepInactivity, benchmark.OperationInactivityQuery, func() (benchmark.Outcome, error) {
			return h.backend.NamedQuery(ctx, benchmark.QueryInactivity)
		}},
		{warmupStepUpdate, benchmark.OperationUpdate, func() (benchmark.Outcome, error) {
			return h.backend.PointUpdate(ctx, warmupEmail(1, 0), benchmark.UpdatedEmail(warmupEmail(1, 0)))
		}},
		{warmupStepUpdate, benchmark.OperationUpdate, func() (benchmark.Outcome, error) {
			return h.backend.PointUpdate(ctx, warmupEmail(0, 0), benchmark.UpdatedEmail(warmupEmail(0, 0)))
		}},
		{warmupStepDelete, benchmark.OperationDelete, func() (benchmark.Outcome, error) {
			return h.backend.PointDelete(ctx, warmupEmail(lastRound, 0))
		}},
	}

	for _, step := range steps {
		failures += h.warmupStep(ctx, step.name, step.operation, step.fn)
	}

	if err := h.backend.ClearAll(ctx); err != nil {
		failures++
		h.logWarn(ctx, logMsgWarmupStepFailed, err, logAttrStep, warmupStepClear)
	}

	h.logInfo(ctx, logMsgWarmupFinished,
		logAttrBackend, h.backend.Name(),
		logAttrFailures, failures,
		logAttrDurationMS, benchmark.ToMilliseconds(time.Since(start)),
	)

	h.finishSpan(span, nil, map[string]string{logAttrFailures: strconv.Itoa(failures)})
}

// warmupStep runs one warm-up operation and returns 1 if it failed.
func (h *Harness) warmupStep(
	ctx context.Context,
	name string,
	operation benchmark.Operation,
	fn func() (benchmark.Outcome, error),
) int {

	outcome, err := fn()
	if err != nil {
		h.logWarn(ctx, logMsgWarmupStepFailed, err, logAttrStep, name)
		h.recordOperationError(ctx, phaseWarmup, operation, classifyError(err))

		return 1
	}

	h.observe(ctx, phaseWarmup, h.cfg.WarmupScale, operation, outcome)

	return 0
}
