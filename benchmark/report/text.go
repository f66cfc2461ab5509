package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
)

// WriteText writes the summary as text tables: one row per (scale, operation) with the mean
// in milliseconds, the write throughput per scale, the latency probe, the concurrency means
// and the named query measurements of a queries-only run.
func WriteText(w io.Writer, summary harness.RunSummary) error {
	p := &printer{w: w}

	p.printf("Backend: %s\n", summary.Backend)

	if summary.Sweep != nil {
		writeSweepText(p, *summary.Sweep)
	}

	if summary.Probe != nil {
		p.printf("\nLatency probe\n")
		table := newTable(p, "Operation", "Latency (ms)")
		table.Append([]string{string(benchmark.OperationWrite), formatMillis(summary.Probe.Write.Elapsed)})
		table.Append([]string{string(benchmark.OperationRead), formatMillis(summary.Probe.Read.Elapsed)})
		table.Render()
	}

	if summary.Concurrency != nil {
		writeConcurrencyText(p, *summary.Concurrency)
	}

	if summary.Queries != nil {
		writeQueriesText(p, *summary.Queries)
	}

	return p.err
}

// newTable returns a table with the given header that renders to w.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)

	return table
}

func writeSweepText(p *printer, sweep harness.SweepSummary) {
	p.printf("\nScale sweep (%d completed runs, %d aborted)\n", sweep.CompletedRuns, len(sweep.Failures))

	table := newTable(p, "Operation", "Scale", "Mean (ms)", "Observations")
	for _, entry := range sweep.Report.Entries() {
		table.Append([]string{
			string(entry.Operation),
			strconv.Itoa(entry.Scale),
			formatMillis(entry.Mean),
			strconv.Itoa(entry.Observations),
		})
	}
	table.Render()

	if scales := sweep.Report.Scales(); len(scales) > 0 {
		p.printf("\nWrite throughput\n")

		throughput := newTable(p, "Scale", "Records/ms")
		for _, scale := range scales {
			throughput.Append([]string{
				strconv.Itoa(scale),
				formatThroughput(scale, sweep.Report.Mean(scale, benchmark.OperationWrite)),
			})
		}
		throughput.Render()
	}

	for _, failure := range sweep.Failures {
		p.printf("run %d aborted at scale %d: %v\n", failure.Run, failure.Scale, failure.Err)
	}
}

func writeConcurrencyText(p *printer, report harness.ConcurrencyReport) {
	p.printf("\nConcurrency (%d records per virtual user)\n", report.Records)

	header := []string{"Threads"}
	for _, op := range benchmark.CRUDOperations() {
		header = append(header, string(op)+" (ms)")
	}
	header = append(header, "Failures")

	table := newTable(p, header...)
	for _, level := range report.Levels {
		row := []string{strconv.Itoa(level.Threads)}
		for _, op := range benchmark.CRUDOperations() {
			row = append(row, formatMillis(level.Means[op]))
		}
		table.Append(append(row, strconv.Itoa(level.Failures)))
	}

	overall := []string{"overall"}
	for _, op := range benchmark.CRUDOperations() {
		overall = append(overall, formatMillis(report.Overall[op]))
	}
	table.Append(append(overall, ""))
	table.Render()

	for _, level := range report.Levels {
		if level.Err != nil {
			p.printf("level %d failed: %v\n", level.Threads, level.Err)
		}
	}
}

func writeQueriesText(p *printer, queries harness.QuerySummary) {
	p.printf("\nNamed queries on existing data (%d runs)\n", queries.Runs)

	table := newTable(p, "Query", "Mean (ms)", "Observations", "Rows", "Failures")
	for _, result := range queries.Results {
		table.Append([]string{
			string(result.Kind),
			formatMillis(result.Mean),
			strconv.Itoa(len(result.Durations)),
			strconv.Itoa(result.Rows),
			strconv.Itoa(result.Failures),
		})
	}
	table.Render()
}

// printer keeps the first write error so the report code stays linear.
// Tables render through it as well.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}

	var n int
	n, p.err = p.w.Write(b)

	return n, p.err
}
