package benchmark

import "time"

// Result is one timing observation for an operation at a scale.
type Result struct {
	Scale     int
	Operation Operation
	Duration  time.Duration
}

// Millis returns the duration in fractional milliseconds.
func (r Result) Millis() float64 {
	return ToMilliseconds(r.Duration)
}
