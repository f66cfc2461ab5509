package memengine

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/analytics"
)

const (
	defaultBackendName = "memory"
	logMsgOperation    = "memengine operation: "
	logAttrAffected    = "affected"
	logAttrDurationMS  = "duration_ms"
)

// Backend is an in-memory benchmark.Backend.
type Backend struct {
	mu      sync.RWMutex
	byEmail map[string]benchmark.Record
	name    string
	now     func() time.Time
	logger  benchmark.Logger
	closed  bool
}

// Option defines a functional option for configuring Backend.
type Option func(*Backend) error

// WithName overrides the backend name used in reports and errors.
func WithName(name string) Option {
	return func(b *Backend) error {
		if name == "" {
			return benchmark.ErrEmptyBackendName
		}

		b.name = name

		return nil
	}
}

// WithClock sets the clock the analytical queries evaluate "now" against.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) error {
		b.now = now
		return nil
	}
}

// WithLogger sets the logger, operations are logged at debug level.
func WithLogger(logger benchmark.Logger) Option {
	return func(b *Backend) error {
		b.logger = logger
		return nil
	}
}

// NewBackend creates an empty in-memory Backend.
func NewBackend(options ...Option) (*Backend, error) {
	b := &Backend{
		byEmail: make(map[string]benchmark.Record),
		name:    defaultBackendName,
		now:     time.Now,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// BulkWrite stores all records or none of them.
func (b *Backend) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationWrite, func() (int, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		batch := make(map[string]struct{}, len(records))
		for _, record := range records {
			if _, exists := b.byEmail[record.Email]; exists {
				return 0, benchmark.ErrDuplicateKey
			}
			if _, exists := batch[record.Email]; exists {
				return 0, benchmark.ErrDuplicateKey
			}
			batch[record.Email] = struct{}{}
		}

		for _, record := range records {
			b.byEmail[record.Email] = record
		}

		return len(records), nil
	})
}

// PointRead looks up the record with the given email.
func (b *Backend) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationRead, func() (int, error) {
		b.mu.RLock()
		defer b.mu.RUnlock()

		if _, ok := b.byEmail[email]; ok {
			return 1, nil
		}

		return 0, nil
	})
}

// PointUpdate renames the record with oldEmail to newEmail.
func (b *Backend) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationUpdate, func() (int, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		record, ok := b.byEmail[oldEmail]
		if !ok {
			return 0, nil
		}

		if oldEmail == newEmail {
			return 1, nil
		}

		if _, taken := b.byEmail[newEmail]; taken {
			return 0, benchmark.ErrDuplicateKey
		}

		delete(b.byEmail, oldEmail)
		record.Email = newEmail
		b.byEmail[newEmail] = record

		return 1, nil
	})
}

// PointDelete removes the record with the given email.
func (b *Backend) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationDelete, func() (int, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.byEmail[email]; !ok {
			return 0, nil
		}

		delete(b.byEmail, email)

		return 1, nil
	})
}

// NamedQuery evaluates the analytical query over a snapshot of all records.
func (b *Backend) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	return b.measure(ctx, kind.Operation(), func() (int, error) {
		return analytics.Evaluate(kind, b.snapshot(), b.now())
	})
}

// ClearAll removes every record.
func (b *Backend) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return benchmark.NewBackendError(b.name, benchmark.OperationClear, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.byEmail = make(map[string]benchmark.Record)

	return nil
}

// Close marks the backend closed and drops its records.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.byEmail = make(map[string]benchmark.Record)

	return nil
}

// Count returns the number of stored records.
func (b *Backend) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.byEmail)
}

// Contains reports whether a record with the given email is stored.
func (b *Backend) Contains(email string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.byEmail[email]

	return ok
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.closed
}

func (b *Backend) snapshot() []benchmark.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]benchmark.Record, 0, len(b.byEmail))
	for _, record := range b.byEmail {
		records = append(records, record)
	}

	return records
}

// measure checks the context, times fn and logs the outcome at debug level.
func (b *Backend) measure(
	ctx context.Context,
	operation benchmark.Operation,
	fn func() (int, error),
) (benchmark.Outcome, error) {

	if err := ctx.Err(); err != nil {
		return benchmark.Outcome{}, benchmark.NewBackendError(b.name, operation, err)
	}

	outcome, err := benchmark.Measure(b.name, operation, fn)
	if err == nil && b.logger != nil {
		b.logger.Debug(
			logMsgOperation+string(operation),
			logAttrAffected, outcome.Affected,
			logAttrDurationMS, benchmark.ToMilliseconds(outcome.Elapsed),
		)
	}

	return outcome, err
}

var _ benchmark.Backend = (*Backend)(nil)
