package report

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the JSON shape of a RunSummary. All durations are fractional milliseconds.
type Document struct {
	Backend     string               `json:"backend"`
	Sweep       *SweepDocument       `json:"sweep,omitempty"`
	Probe       *ProbeDocument       `json:"latencyProbe,omitempty"`
	Concurrency *ConcurrencyDocument `json:"concurrency,omitempty"`
	Queries     *QueriesDocument     `json:"queries,omitempty"`
}

type SweepDocument struct {
	CompletedRuns int               `json:"completedRuns"`
	Entries       []EntryDocument   `json:"entries"`
	Throughput    map[int]float64   `json:"writeThroughputRecordsPerMs"`
	Failures      []FailureDocument `json:"failures,omitempty"`
}

type EntryDocument struct {
	Scale        int     `json:"scale"`
	Operation    string  `json:"operation"`
	MeanMillis   float64 `json:"meanMs"`
	Observations int     `json:"observations"`
}

type FailureDocument struct {
	Run   int    `json:"run"`
	Scale int    `json:"scale"`
	Error string `json:"error"`
}

type ProbeDocument struct {
	WriteMillis float64 `json:"writeMs"`
	ReadMillis  float64 `json:"readMs"`
}

type ConcurrencyDocument struct {
	Records int                `json:"records"`
	Levels  []LevelDocument    `json:"levels"`
	Overall map[string]float64 `json:"overallMeansMs"`
}

type LevelDocument struct {
	Threads  int                `json:"threads"`
	Means    map[string]float64 `json:"meansMs"`
	Failures int                `json:"failures"`
	Error    string             `json:"error,omitempty"`
}

type QueriesDocument struct {
	Runs    int             `json:"runs"`
	Results []QueryDocument `json:"results"`
}

type QueryDocument struct {
	Query        string  `json:"query"`
	MeanMillis   float64 `json:"meanMs"`
	Observations int     `json:"observations"`
	Rows         int     `json:"rows"`
	Failures     int     `json:"failures"`
}

// WriteJSON writes the summary as one indented JSON document.
func WriteJSON(w io.Writer, summary harness.RunSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(NewDocument(summary))
}

// NewDocument converts the summary into its JSON shape.
func NewDocument(summary harness.RunSummary) Document {
	doc := Document{Backend: summary.Backend}

	if summary.Sweep != nil {
		doc.Sweep = newSweepDocument(*summary.Sweep)
	}

	if summary.Probe != nil {
		doc.Probe = &ProbeDocument{
			WriteMillis: benchmark.ToMilliseconds(summary.Probe.Write.Elapsed),
			ReadMillis:  benchmark.ToMilliseconds(summary.Probe.Read.Elapsed),
		}
	}

	if summary.Concurrency != nil {
		doc.Concurrency = newConcurrencyDocument(*summary.Concurrency)
	}

	if summary.Queries != nil {
		doc.Queries = newQueriesDocument(*summary.Queries)
	}

	return doc
}

func newSweepDocument(sweep harness.SweepSummary) *SweepDocument {
	doc := &SweepDocument{
		CompletedRuns: sweep.CompletedRuns,
		Entries:       make([]EntryDocument, 0),
		Throughput:    make(map[int]float64),
	}

	for _, entry := range sweep.Report.Entries() {
		doc.Entries = append(doc.Entries, EntryDocument{
			Scale:        entry.Scale,
			Operation:    string(entry.Operation),
			MeanMillis:   entry.MeanMillis(),
			Observations: entry.Observations,
		})
	}

	for _, scale := range sweep.Report.Scales() {
		doc.Throughput[scale] = Throughput(scale, sweep.Report.Mean(scale, benchmark.OperationWrite))
	}

	for _, failure := range sweep.Failures {
		doc.Failures = append(doc.Failures, FailureDocument{
			Run:   failure.Run,
			Scale: failure.Scale,
			Error: failure.Err.Error(),
		})
	}

	return doc
}

func newConcurrencyDocument(report harness.ConcurrencyReport) *ConcurrencyDocument {
	doc := &ConcurrencyDocument{
		Records: report.Records,
		Levels:  make([]LevelDocument, 0, len(report.Levels)),
		Overall: millisByOperation(report.Overall),
	}

	for _, level := range report.Levels {
		levelDoc := LevelDocument{
			Threads:  level.Threads,
			Means:    millisByOperation(level.Means),
			Failures: level.Failures,
		}
		if level.Err != nil {
			levelDoc.Error = level.Err.Error()
		}

		doc.Levels = append(doc.Levels, levelDoc)
	}

	return doc
}

func newQueriesDocument(queries harness.QuerySummary) *QueriesDocument {
	doc := &QueriesDocument{
		Runs:    queries.Runs,
		Results: make([]QueryDocument, 0, len(queries.Results)),
	}

	for _, result := range queries.Results {
		doc.Results = append(doc.Results, QueryDocument{
			Query:        string(result.Kind),
			MeanMillis:   benchmark.ToMilliseconds(result.Mean),
			Observations: len(result.Durations),
			Rows:         result.Rows,
			Failures:     result.Failures,
		})
	}

	return doc
}

func millisByOperation(means map[benchmark.Operation]time.Duration) map[string]float64 {
	out := make(map[string]float64, len(means))
	for op, d := range means {
		out[string(op)] = benchmark.ToMilliseconds(d)
	}

	return out
}
