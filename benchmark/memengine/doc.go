// Package memengine provides the in-memory reference implementation of benchmark.Backend.
//
// Records are kept in a mutex-guarded map keyed by email. It is used to validate the
// benchmark harness itself and as the baseline every real storage engine is compared against.
package memengine
