package helper

import (
	"context"
	"errors"
	"sync"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

var ErrInjectedFailure = errors.New("injected failure")

// BackendCall is one recorded call on a BackendSpy.
type BackendCall struct {
	Operation benchmark.Operation
	Kind      benchmark.QueryKind
	Email     string
	NewEmail  string
	Records   int
	// N is the 1-based count of calls with the same operation, this call included.
	N int
}

// FailureRule decides whether a call fails. A nil return lets the call through.
type FailureRule func(call BackendCall) error

// FailOnCall fails the n-th call of the given operation with ErrInjectedFailure.
func FailOnCall(operation benchmark.Operation, n int) FailureRule {
	return func(call BackendCall) error {
		if call.Operation == operation && call.N == n {
			return ErrInjectedFailure
		}

		return nil
	}
}

// FailAlways fails every call of the given operation with ErrInjectedFailure.
func FailAlways(operation benchmark.Operation) FailureRule {
	return func(call BackendCall) error {
		if call.Operation == operation {
			return ErrInjectedFailure
		}

		return nil
	}
}

// BackendSpy wraps a benchmark.Backend, records every call and injects failures.
type BackendSpy struct {
	inner  benchmark.Backend
	rules  []FailureRule
	calls  []BackendCall
	counts map[benchmark.Operation]int
	closed int
	mu     sync.Mutex
}

// NewBackendSpy wraps inner, applying the failure rules in order.
func NewBackendSpy(inner benchmark.Backend, rules ...FailureRule) *BackendSpy {
	return &BackendSpy{
		inner:  inner,
		rules:  rules,
		counts: make(map[benchmark.Operation]int),
	}
}

// Name implements benchmark.Backend.
func (s *BackendSpy) Name() string {
	return s.inner.Name()
}

// BulkWrite implements benchmark.Backend.
func (s *BackendSpy) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	if err := s.record(BackendCall{Operation: benchmark.OperationWrite, Records: len(records)}); err != nil {
		return benchmark.Outcome{}, err
	}

	return s.inner.BulkWrite(ctx, records)
}

// PointRead implements benchmark.Backend.
func (s *BackendSpy) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	if err := s.record(BackendCall{Operation: benchmark.OperationRead, Email: email}); err != nil {
		return benchmark.Outcome{}, err
	}

	return s.inner.PointRead(ctx, email)
}

// PointUpdate implements benchmark.Backend.
func (s *BackendSpy) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	if err := s.record(BackendCall{Operation: benchmark.OperationUpdate, Email: oldEmail, NewEmail: newEmail}); err != nil {
		return benchmark.Outcome{}, err
	}

	return s.inner.PointUpdate(ctx, oldEmail, newEmail)
}

// PointDelete implements benchmark.Backend.
func (s *BackendSpy) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	if err := s.record(BackendCall{Operation: benchmark.OperationDelete, Email: email}); err != nil {
		return benchmark.Outcome{}, err
	}

	return s.inner.PointDelete(ctx, email)
}

// NamedQuery implements benchmark.Backend.
func (s *BackendSpy) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	if err := s.record(BackendCall{Operation: kind.Operation(), Kind: kind}); err != nil {
		return benchmark.Outcome{}, err
	}

	return s.inner.NamedQuery(ctx, kind)
}

// ClearAll implements benchmark.Backend.
func (s *BackendSpy) ClearAll(ctx context.Context) error {
	if err := s.record(BackendCall{Operation: benchmark.OperationClear}); err != nil {
		return err
	}

	return s.inner.ClearAll(ctx)
}

// Close implements benchmark.Backend.
func (s *BackendSpy) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()

	return s.inner.Close()
}

// Calls returns a copy of all recorded calls in call order.
func (s *BackendSpy) Calls() []BackendCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]BackendCall(nil), s.calls...)
}

// CallsOf returns the recorded calls of the given operation.
func (s *BackendSpy) CallsOf(operation benchmark.Operation) []BackendCall {
	calls := make([]BackendCall, 0)
	for _, call := range s.Calls() {
		if call.Operation == operation {
			calls = append(calls, call)
		}
	}

	return calls
}

// CloseCount returns how often Close was called.
func (s *BackendSpy) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *BackendSpy) record(call BackendCall) error {
	s.mu.Lock()
	s.counts[call.Operation]++
	call.N = s.counts[call.Operation]
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	for _, rule := range s.rules {
		if err := rule(call); err != nil {
			return benchmark.NewBackendError(s.inner.Name(), call.Operation, err)
		}
	}

	return nil
}

var _ benchmark.Backend = (*BackendSpy)(nil)
