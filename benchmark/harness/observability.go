package harness

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	metricOperationDuration = "benchmark_operation_duration_seconds"
	metricOperationErrors   = "benchmark_operation_errors_total"
	metricAbortedRuns       = "benchmark_aborted_runs_total"
	metricVirtualUsers      = "benchmark_concurrency_virtual_users"

	labelBackend   = "backend"
	labelOperation = "operation"
	labelScale     = "scale"
	labelPhase     = "phase"
	labelRun       = "run"
	labelThreads   = "threads"
	labelErrorType = "error_type"

	phaseWarmup      = "warmup"
	phaseSweep       = "sweep"
	phaseProbe       = "probe"
	phaseConcurrency = "concurrency"
	phaseQueries     = "queries"

	spanNameWarmup           = "benchmark.warmup"
	spanNameSweepRun         = "benchmark.sweep.run"
	spanNameSweepScale       = "benchmark.sweep.scale"
	spanNameLatencyProbe     = "benchmark.probe"
	spanNameConcurrencyLevel = "benchmark.concurrency.level"
	spanNameQueries          = "benchmark.queries"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBackend    = "backend_error"
	errorTypeGeneration = "generation_error"
	errorTypeCanceled   = "canceled"

	logMsgOperation         = "benchmark operation: "
	logMsgWarmupStarted     = "warm-up started"
	logMsgWarmupFinished    = "warm-up finished"
	logMsgWarmupStepFailed  = "warm-up step failed, continuing"
	logMsgRunStarted        = "sweep run started"
	logMsgRunCompleted      = "sweep run completed"
	logMsgRunAborted        = "sweep run aborted"
	logMsgScaleAverages     = "scale averages"
	logMsgSweepFinished     = "sweep finished"
	logMsgProbeFinished     = "latency probe finished"
	logMsgProbeFailed       = "latency probe failed"
	logMsgLevelStarted      = "concurrency level started"
	logMsgLevelFinished     = "concurrency level finished"
	logMsgVirtualUserFailed = "virtual user failed"
	logMsgConcurrencyFailed = "concurrency simulation aborted"
	logMsgLevelFailed       = "concurrency level failed, continuing"
	logMsgWarmupClearFailed = "clearing before warm-up failed, continuing"
	logMsgQueryFailed       = "named query failed, continuing"
	logMsgQueriesFinished   = "query measurement finished"
	logMsgCleanupFailed     = "final cleanup failed"
	logMsgCloseFailed       = "closing backend failed"

	logAttrBackend    = "backend"
	logAttrError      = "error"
	logAttrRun        = "run"
	logAttrScale      = "scale"
	logAttrThreads    = "threads"
	logAttrVU         = "virtual_user"
	logAttrStep       = "step"
	logAttrQuery      = "query"
	logAttrFailures   = "failures"
	logAttrAffected   = "affected"
	logAttrDurationMS = "duration_ms"
	logAttrWriteMS    = "write_ms"
	logAttrReadMS     = "read_ms"
	logAttrUpdateMS   = "update_ms"
	logAttrDeleteMS   = "delete_ms"
)

// logDebug logs at debug level to every configured logger.
func (h *Harness) logDebug(ctx context.Context, msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}

	if h.contextualLogger != nil {
		h.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

// logInfo logs at info level to every configured logger.
func (h *Harness) logInfo(ctx context.Context, msg string, args ...any) {
	if h.logger != nil {
		h.logger.Info(msg, args...)
	}

	if h.contextualLogger != nil {
		h.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logWarn logs a swallowed failure at warn level to every configured logger.
func (h *Harness) logWarn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if h.logger != nil {
		h.logger.Warn(msg, allArgs...)
	}

	if h.contextualLogger != nil {
		h.contextualLogger.WarnContext(ctx, msg, allArgs...)
	}
}

// logError logs a failure at error level to every configured logger.
func (h *Harness) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if h.logger != nil {
		h.logger.Error(msg, allArgs...)
	}

	if h.contextualLogger != nil {
		h.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// observe logs a measured operation at debug level and records its duration metric.
func (h *Harness) observe(
	ctx context.Context,
	phase string,
	scale int,
	operation benchmark.Operation,
	outcome benchmark.Outcome,
) {
	h.logDebug(ctx, logMsgOperation+string(operation),
		logAttrBackend, h.backend.Name(),
		logAttrScale, scale,
		logAttrAffected, outcome.Affected,
		logAttrDurationMS, benchmark.ToMilliseconds(outcome.Elapsed),
	)

	h.recordDuration(ctx, outcome.Elapsed, map[string]string{
		labelBackend:   h.backend.Name(),
		labelOperation: string(operation),
		labelScale:     strconv.Itoa(scale),
		labelPhase:     phase,
	})
}

// recordDuration records a duration metric, context-aware when the collector supports it.
func (h *Harness) recordDuration(ctx context.Context, d time.Duration, labels map[string]string) {
	if h.metricsCollector == nil {
		return
	}

	if contextual, ok := h.metricsCollector.(benchmark.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOperationDuration, d, labels)
		return
	}

	h.metricsCollector.RecordDuration(metricOperationDuration, d, labels)
}

// incrementCounter increments a counter metric, context-aware when the collector supports it.
func (h *Harness) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if h.metricsCollector == nil {
		return
	}

	if contextual, ok := h.metricsCollector.(benchmark.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	h.metricsCollector.IncrementCounter(metric, labels)
}

// recordValue records a gauge value, context-aware when the collector supports it.
func (h *Harness) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if h.metricsCollector == nil {
		return
	}

	if contextual, ok := h.metricsCollector.(benchmark.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	h.metricsCollector.RecordValue(metric, value, labels)
}

// recordOperationError counts a failed backend operation.
func (h *Harness) recordOperationError(ctx context.Context, phase string, operation benchmark.Operation, errorType string) {
	h.incrementCounter(ctx, metricOperationErrors, map[string]string{
		labelBackend:   h.backend.Name(),
		labelOperation: string(operation),
		labelPhase:     phase,
		labelErrorType: errorType,
	})
}

// startSpan starts a tracing span if the tracing collector is configured.
func (h *Harness) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, benchmark.SpanContext) {
	if h.tracingCollector == nil {
		return ctx, nil
	}

	if attrs == nil {
		attrs = make(map[string]string)
	}
	attrs[labelBackend] = h.backend.Name()

	return h.tracingCollector.StartSpan(ctx, name, attrs)
}

// finishSpan finishes a tracing span with success or error status.
func (h *Harness) finishSpan(span benchmark.SpanContext, err error, attrs map[string]string) {
	if h.tracingCollector == nil || span == nil {
		return
	}

	status := statusSuccess
	if err != nil {
		status = statusError
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[labelErrorType] = classifyError(err)
	}

	h.tracingCollector.FinishSpan(span, status, attrs)
}
