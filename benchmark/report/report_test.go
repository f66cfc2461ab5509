package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/report"
)

func fixtureSummary() harness.RunSummary {
	aggregator := benchmark.NewAggregator()
	aggregator.Record(100, benchmark.OperationWrite, 4*time.Millisecond)
	aggregator.Record(100, benchmark.OperationWrite, 6*time.Millisecond)
	aggregator.Record(100, benchmark.OperationRead, 250*time.Microsecond)
	aggregator.Record(1000, benchmark.OperationWrite, 20*time.Millisecond)

	return harness.RunSummary{
		Backend: "memory",
		Sweep: &harness.SweepSummary{
			Report:        aggregator.Finalize(),
			CompletedRuns: 2,
			Failures: []harness.RunFailure{
				{Run: 3, Scale: 1000, Err: errors.New("connection reset")},
			},
		},
		Probe: &harness.LatencyProbe{
			Write: benchmark.Outcome{Elapsed: 2 * time.Millisecond, Affected: 1},
			Read:  benchmark.Outcome{Elapsed: time.Millisecond, Affected: 1},
		},
		Concurrency: &harness.ConcurrencyReport{
			Records: 1000,
			Levels: []harness.LevelResult{
				{
					Threads: 1,
					Means: map[benchmark.Operation]time.Duration{
						benchmark.OperationWrite: 8 * time.Millisecond,
						benchmark.OperationRead:  time.Millisecond,
					},
				},
			},
			Overall: map[benchmark.Operation]time.Duration{
				benchmark.OperationWrite: 8 * time.Millisecond,
				benchmark.OperationRead:  time.Millisecond,
			},
		},
	}
}

// tableRow matches the cells of one rendered table row, in order.
func tableRow(cells ...string) string {
	return `\|\s*` + strings.Join(cells, `\s*\|\s*`) + `\s*\|`
}

func queriesSummary() harness.RunSummary {
	return harness.RunSummary{
		Backend: "postgres",
		Queries: &harness.QuerySummary{
			Runs: 2,
			Results: []harness.QueryResult{
				{
					Kind:      benchmark.QueryRetention,
					Durations: []time.Duration{2 * time.Millisecond, 4 * time.Millisecond},
					Mean:      3 * time.Millisecond,
					Rows:      24,
				},
				{
					Kind:      benchmark.QueryDemographic,
					Durations: []time.Duration{time.Millisecond},
					Mean:      time.Millisecond,
					Rows:      10,
					Failures:  1,
				},
			},
		},
	}
}

func Test_Throughput_When_DurationIsZero_Then_ItIsZero(t *testing.T) {
	assert.Equal(t, float64(0), report.Throughput(100, 0))
	assert.InDelta(t, 20.0, report.Throughput(100, 5*time.Millisecond), 0.0001)
}

func Test_WriteText_When_SummaryIsComplete_Then_AllSectionsAreRendered(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteText(&buf, fixtureSummary())

	// assert
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Backend: memory")
	assert.Contains(t, output, "2 completed runs, 1 aborted")
	assert.Regexp(t, tableRow("Operation", "Scale", "Mean \\(ms\\)", "Observations"), output)
	assert.Regexp(t, tableRow("write", "100", `5\.000`, "2"), output)
	assert.Regexp(t, tableRow("read", "100", `0\.250`, "1"), output)
	assert.Regexp(t, tableRow("Scale", "Records/ms"), output)
	assert.Regexp(t, tableRow("100", `20\.00`), output)
	assert.Regexp(t, tableRow("1000", `50\.00`), output)
	assert.Contains(t, output, "run 3 aborted at scale 1000: connection reset")
	assert.Contains(t, output, "Latency probe")
	assert.Regexp(t, tableRow("Operation", "Latency \\(ms\\)"), output)
	assert.Regexp(t, tableRow("write", `2\.000`), output)
	assert.Regexp(t, tableRow("Threads", "write \\(ms\\)", "read \\(ms\\)", "update \\(ms\\)", "delete \\(ms\\)", "Failures"), output)
	assert.Regexp(t, tableRow("1", `8\.000`, `1\.000`, `0\.000`, `0\.000`, "0"), output)
	assert.Regexp(t, tableRow("overall", `8\.000`, `1\.000`, `0\.000`, `0\.000`, ""), output)
}

func Test_WriteText_When_AConcurrencyLevelFailed_Then_ItsErrorIsListed(t *testing.T) {
	// setup
	var buf bytes.Buffer
	summary := harness.RunSummary{
		Backend: "sqlite",
		Concurrency: &harness.ConcurrencyReport{
			Records: 10,
			Levels: []harness.LevelResult{
				{Threads: 1, Failures: 1, Err: errors.New("database is locked")},
				{Threads: 2, Means: map[benchmark.Operation]time.Duration{benchmark.OperationWrite: time.Millisecond}},
			},
		},
	}

	// act
	err := report.WriteText(&buf, summary)

	// assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level 1 failed: database is locked")
	assert.Regexp(t, tableRow("2", `1\.000`, `0\.000`, `0\.000`, `0\.000`, "0"), buf.String())
}

func Test_WriteText_When_QueriesWereMeasured_Then_QueryTableIsRendered(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteText(&buf, queriesSummary())

	// assert
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Named queries on existing data (2 runs)")
	assert.Regexp(t, tableRow("Query", "Mean \\(ms\\)", "Observations", "Rows", "Failures"), output)
	assert.Regexp(t, tableRow("retention", `3\.000`, "2", "24", "0"), output)
	assert.Regexp(t, tableRow("demographic", `1\.000`, "1", "10", "1"), output)
	assert.NotContains(t, output, "Scale sweep")
}

func Test_WriteText_When_WriterFails_Then_TheFirstErrorIsReturned(t *testing.T) {
	// setup
	writer := &failingWriter{failAfter: 1}

	// act
	err := report.WriteText(writer, fixtureSummary())

	// assert
	assert.ErrorIs(t, err, errWriteFailed)
	assert.Equal(t, 2, writer.calls, "nothing is written after the first failure")
}

var errWriteFailed = errors.New("disk full")

type failingWriter struct {
	failAfter int
	calls     int
}

func (w *failingWriter) Write(b []byte) (int, error) {
	w.calls++
	if w.calls > w.failAfter {
		return 0, errWriteFailed
	}

	return len(b), nil
}

func Test_WriteText_When_OnlyTheBackendIsKnown_Then_SectionsAreOmitted(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteText(&buf, harness.RunSummary{Backend: "sqlite"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Backend: sqlite\n", buf.String())
}

func Test_WriteJSON_When_SummaryIsComplete_Then_DocumentHoldsMilliseconds(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteJSON(&buf, fixtureSummary())

	// assert
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "memory", doc.Backend)
	require.NotNil(t, doc.Sweep)
	require.Len(t, doc.Sweep.Entries, 3)
	assert.Equal(t, report.EntryDocument{Scale: 100, Operation: "write", MeanMillis: 5, Observations: 2}, doc.Sweep.Entries[0])
	assert.InDelta(t, 50.0, doc.Sweep.Throughput[1000], 0.0001)
	require.Len(t, doc.Sweep.Failures, 1)
	assert.Equal(t, "connection reset", doc.Sweep.Failures[0].Error)
	require.NotNil(t, doc.Probe)
	assert.Equal(t, 2.0, doc.Probe.WriteMillis)
	require.NotNil(t, doc.Concurrency)
	assert.Equal(t, 8.0, doc.Concurrency.Overall["write"])
	assert.Equal(t, 1, doc.Concurrency.Levels[0].Threads)
}

func Test_WriteJSON_When_QueriesWereMeasured_Then_DocumentHoldsThem(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteJSON(&buf, queriesSummary())

	// assert
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &doc))
	assert.Nil(t, doc.Sweep)
	require.NotNil(t, doc.Queries)
	assert.Equal(t, 2, doc.Queries.Runs)
	require.Len(t, doc.Queries.Results, 2)
	assert.Equal(t, report.QueryDocument{Query: "retention", MeanMillis: 3, Observations: 2, Rows: 24}, doc.Queries.Results[0])
	assert.Equal(t, 1, doc.Queries.Results[1].Failures)
}

func Test_WriteJSON_When_SectionsAreSkipped_Then_TheyAreOmitted(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := report.WriteJSON(&buf, harness.RunSummary{Backend: "bolt"})

	// assert
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "sweep")
	assert.NotContains(t, buf.String(), "concurrency")
}
