package harness

import (
	"errors"
	"runtime"
)

// Config is the immutable run configuration of a Harness.
type Config struct {
	// Scales are the record counts of the sweep, measured in the given order.
	Scales []int

	// Runs is how often the whole sweep is repeated.
	Runs int

	// SampleDivisors pick the sampled records of a scale: index floor(scale/divisor) per divisor.
	SampleDivisors []float64

	WarmupScale  int
	WarmupRounds int

	// ConcurrencyMax is the highest virtual-user level. 0 means runtime.NumCPU()-1, at least 1.
	ConcurrencyMax     int
	ConcurrencyRecords int

	// ClearBetweenLevels clears the backend after each concurrency level.
	ClearBetweenLevels bool

	SkipWarmup       bool
	SkipSweep        bool
	SkipLatencyProbe bool
	SkipConcurrency  bool

	// QueriesOnly measures the named queries Runs times against the data the backend already holds.
	// All other phases are skipped and the backend is never cleared, not even on shutdown.
	QueriesOnly bool
}

// DefaultConfig returns the standard protocol: scales 100 to 1,000,000, 10 runs,
// three samples per scale, 3x100 warm-up records and 1,000 records per virtual user.
func DefaultConfig() Config {
	return Config{
		Scales:             []int{100, 1000, 10000, 100000, 1000000},
		Runs:               10,
		SampleDivisors:     []float64{1.5, 2, 3},
		WarmupScale:        100,
		WarmupRounds:       3,
		ConcurrencyMax:     0,
		ConcurrencyRecords: 1000,
		ClearBetweenLevels: true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Runs < 1 {
		return errors.Join(ErrInvalidConfig, ErrInvalidRuns)
	}

	if len(c.Scales) == 0 {
		return errors.Join(ErrInvalidConfig, ErrEmptyScales)
	}

	for _, scale := range c.Scales {
		if scale < 1 {
			return errors.Join(ErrInvalidConfig, ErrInvalidScale)
		}
	}

	for _, divisor := range c.SampleDivisors {
		if divisor <= 1 {
			return errors.Join(ErrInvalidConfig, ErrInvalidSampleDivisor)
		}
	}

	if c.WarmupRounds < 0 || c.WarmupScale < 0 || (c.WarmupRounds > 0 && c.WarmupScale == 0) {
		return errors.Join(ErrInvalidConfig, ErrInvalidWarmup)
	}

	if c.ConcurrencyMax < 0 || c.ConcurrencyRecords < 1 {
		return errors.Join(ErrInvalidConfig, ErrInvalidConcurrency)
	}

	return nil
}

// MaxVirtualUsers resolves ConcurrencyMax, defaulting to one less than the number of CPUs.
func (c Config) MaxVirtualUsers() int {
	if c.ConcurrencyMax > 0 {
		return c.ConcurrencyMax
	}

	return max(runtime.NumCPU()-1, 1)
}

// SampleIndices returns floor(scale/divisor) for every divisor, duplicates included.
func (c Config) SampleIndices(scale int) []int {
	indices := make([]int, 0, len(c.SampleDivisors))
	for _, divisor := range c.SampleDivisors {
		indices = append(indices, int(float64(scale)/divisor))
	}

	return indices
}

func (c Config) clone() Config {
	c.Scales = append([]int(nil), c.Scales...)
	c.SampleDivisors = append([]float64(nil), c.SampleDivisors...)

	return c
}
