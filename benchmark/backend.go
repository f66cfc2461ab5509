package benchmark

import (
	"context"
	"time"
)

// Outcome is the result of one timed Backend call.
//
// Elapsed is the wall-clock time of the underlying storage call.
// Affected is the number of records written, found, updated, deleted, or the number of result rows of a named query.
type Outcome struct {
	Elapsed  time.Duration
	Affected int
}

// Backend is the contract every storage engine implements.
//
// All methods may block and must honor context cancellation.
// Every failure is reported as a *BackendError.
// BulkWrite is all-or-nothing and fails on a duplicate email.
// PointUpdate of a missing email affects zero records and is not an error.
// ClearAll is idempotent and leaves the backend empty.
type Backend interface {
	Name() string
	BulkWrite(ctx context.Context, records []Record) (Outcome, error)
	PointRead(ctx context.Context, email string) (Outcome, error)
	PointUpdate(ctx context.Context, oldEmail, newEmail string) (Outcome, error)
	PointDelete(ctx context.Context, email string) (Outcome, error)
	NamedQuery(ctx context.Context, kind QueryKind) (Outcome, error)
	ClearAll(ctx context.Context) error
	Close() error
}
