package harness

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

// QueryResult is the measurement of one named query against existing data.
type QueryResult struct {
	Kind benchmark.QueryKind

	// Durations holds one duration per successful execution.
	Durations []time.Duration
	Mean      time.Duration

	// Rows is the result row count of the last successful execution.
	Rows     int
	Failures int
}

// QuerySummary is the result of MeasureQueries, one QueryResult per kind in execution order.
type QuerySummary struct {
	Runs    int
	Results []QueryResult
}

// MeasureQueries runs every named query Runs times against whatever the backend already holds,
// e.g. a dataset loaded by import-users. Nothing is written or cleared.
//
// A failed query is logged, counted in its result and skipped. Context cancellation or any
// failure that is not a *benchmark.BackendError ends the measurement with an error.
func (h *Harness) MeasureQueries(ctx context.Context) (summary QuerySummary, err error) {
	ctx, span := h.startSpan(ctx, spanNameQueries, map[string]string{labelRun: strconv.Itoa(h.cfg.Runs)})
	defer func() {
		h.finishSpan(span, err, nil)
	}()

	kinds := benchmark.QueryKinds()
	results := make([]QueryResult, len(kinds))
	for i, kind := range kinds {
		results[i] = QueryResult{Kind: kind}
	}

	defer func() {
		for i := range results {
			results[i].Mean = benchmark.MeanDuration(results[i].Durations)
		}
		summary.Results = results
	}()

	for run := 0; run < h.cfg.Runs; run++ {
		for i, kind := range kinds {
			outcome, queryErr := h.backend.NamedQuery(ctx, kind)
			if queryErr != nil {
				if isFatal(ctx, queryErr) {
					return summary, queryErr
				}

				results[i].Failures++
				h.logWarn(ctx, logMsgQueryFailed, queryErr, logAttrBackend, h.backend.Name(), logAttrRun, run, logAttrQuery, string(kind))
				h.recordOperationError(ctx, phaseQueries, kind.Operation(), classifyError(queryErr))

				continue
			}

			h.observe(ctx, phaseQueries, 0, kind.Operation(), outcome)
			results[i].Durations = append(results[i].Durations, outcome.Elapsed)
			results[i].Rows = outcome.Affected
		}

		summary.Runs++
	}

	h.logInfo(ctx, logMsgQueriesFinished, logAttrBackend, h.backend.Name(), logAttrRun, summary.Runs)

	return summary, nil
}
