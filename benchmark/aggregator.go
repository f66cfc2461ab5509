package benchmark

import (
	"sort"
	"sync"
	"time"
)

type resultKey struct {
	scale     int
	operation Operation
}

type accumulator struct {
	sum          time.Duration
	observations int
}

// Aggregator accumulates timing observations per (scale, operation).
// It is safe for concurrent use and performs no I/O.
type Aggregator struct {
	mu      sync.Mutex
	buckets map[resultKey]accumulator
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{buckets: make(map[resultKey]accumulator)}
}

// Record adds one observation.
func (a *Aggregator) Record(scale int, operation Operation, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := resultKey{scale: scale, operation: operation}
	acc := a.buckets[key]
	acc.sum += d
	acc.observations++
	a.buckets[key] = acc
}

// RecordResults adds all results as observations.
func (a *Aggregator) RecordResults(results ...Result) {
	for _, r := range results {
		a.Record(r.Scale, r.Operation, r.Duration)
	}
}

// Finalize computes the mean of every (scale, operation) seen so far.
// The Aggregator stays usable afterward.
func (a *Aggregator) Finalize() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := make(map[resultKey]ReportEntry, len(a.buckets))
	for key, acc := range a.buckets {
		entries[key] = ReportEntry{
			Scale:        key.scale,
			Operation:    key.operation,
			Mean:         mean(acc.sum, acc.observations),
			Observations: acc.observations,
		}
	}

	return Report{entries: entries}
}

// ReportEntry is the aggregated mean of one (scale, operation).
type ReportEntry struct {
	Scale        int
	Operation    Operation
	Mean         time.Duration
	Observations int
}

// MeanMillis returns the mean in fractional milliseconds.
func (e ReportEntry) MeanMillis() float64 {
	return ToMilliseconds(e.Mean)
}

// Report maps (scale, operation) to the mean duration across all observations.
type Report struct {
	entries map[resultKey]ReportEntry
}

// Mean returns the mean duration for the scale and operation, or 0 without observations.
func (r Report) Mean(scale int, operation Operation) time.Duration {
	return r.entries[resultKey{scale: scale, operation: operation}].Mean
}

// Observations returns how many observations the mean of the scale and operation is based on.
func (r Report) Observations(scale int, operation Operation) int {
	return r.entries[resultKey{scale: scale, operation: operation}].Observations
}

// Entries returns all entries ordered by scale, then by operation reporting order.
func (r Report) Entries() []ReportEntry {
	entries := make([]ReportEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Scale != entries[j].Scale {
			return entries[i].Scale < entries[j].Scale
		}

		return entries[i].Operation.order() < entries[j].Operation.order()
	})

	return entries
}

// Scales returns the distinct scales of the report in ascending order.
func (r Report) Scales() []int {
	seen := make(map[int]struct{})
	scales := make([]int, 0)

	for key := range r.entries {
		if _, ok := seen[key.scale]; ok {
			continue
		}

		seen[key.scale] = struct{}{}
		scales = append(scales, key.scale)
	}

	sort.Ints(scales)

	return scales
}

// Empty reports whether the report holds no observations at all.
func (r Report) Empty() bool {
	return len(r.entries) == 0
}

// MeanDuration returns the arithmetic mean of the durations, or 0 for an empty slice.
func MeanDuration(durations []time.Duration) time.Duration {
	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return mean(sum, len(durations))
}

func mean(sum time.Duration, observations int) time.Duration {
	if observations == 0 {
		return 0
	}

	return sum / time.Duration(observations)
}
