package harness

import (
	"context"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

// LatencyProbeEmail is the key of the single record the latency probe writes and reads.
const LatencyProbeEmail = "testuser@example.com"

// LatencyProbe holds the single-record write and read latency of a backend.
type LatencyProbe struct {
	Write benchmark.Outcome
	Read  benchmark.Outcome
}

// ProbeLatency measures writing and reading one record on an empty backend and clears it afterward.
func (h *Harness) ProbeLatency(ctx context.Context) (probe LatencyProbe, err error) {
	ctx, span := h.startSpan(ctx, spanNameLatencyProbe, nil)
	defer func() {
		h.finishSpan(span, err, nil)
	}()

	if err = h.backend.ClearAll(ctx); err != nil {
		return LatencyProbe{}, err
	}

	records, err := h.generator.Generate(1, func(string) string { return LatencyProbeEmail })
	if err != nil {
		return LatencyProbe{}, err
	}
	records[0].Name = "Test User"

	if probe.Write, err = h.backend.BulkWrite(ctx, records); err != nil {
		return LatencyProbe{}, err
	}
	h.observe(ctx, phaseProbe, 1, benchmark.OperationWrite, probe.Write)

	if probe.Read, err = h.backend.PointRead(ctx, LatencyProbeEmail); err != nil {
		return LatencyProbe{}, err
	}
	h.observe(ctx, phaseProbe, 1, benchmark.OperationRead, probe.Read)

	if err = h.backend.ClearAll(ctx); err != nil {
		return LatencyProbe{}, err
	}

	h.logInfo(ctx, logMsgProbeFinished,
		logAttrBackend, h.backend.Name(),
		logAttrWriteMS, benchmark.ToMilliseconds(probe.Write.Elapsed),
		logAttrReadMS, benchmark.ToMilliseconds(probe.Read.Elapsed),
	)

	return probe, nil
}
