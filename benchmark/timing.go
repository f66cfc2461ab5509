package benchmark

import (
	"math"
	"time"
)

// Measure times fn with the monotonic clock and turns its result into an Outcome.
// fn returns the number of affected records. A failure is wrapped into a *BackendError,
// the elapsed time is reported in both cases.
func Measure(backend string, operation Operation, fn func() (int, error)) (Outcome, error) {
	start := time.Now()
	affected, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		return Outcome{Elapsed: elapsed}, NewBackendError(backend, operation, err)
	}

	return Outcome{Elapsed: elapsed, Affected: affected}, nil
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
