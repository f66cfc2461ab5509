package harness

import "errors"

var ErrNilBackend = errors.New("backend must not be nil")
var ErrInvalidConfig = errors.New("invalid harness configuration")
var ErrInvalidRuns = errors.New("runs must be positive")
var ErrEmptyScales = errors.New("at least one scale is required")
var ErrInvalidScale = errors.New("scales must be positive")
var ErrInvalidSampleDivisor = errors.New("sample divisors must be greater than 1")
var ErrInvalidWarmup = errors.New("warm-up rounds and scale must not be negative, a scale of 0 with rounds is invalid")
var ErrInvalidConcurrency = errors.New("concurrency max must not be negative and concurrency records must be positive")
