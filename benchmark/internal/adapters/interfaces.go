package adapters

import (
	"context"
	"errors"
)

var ErrBeginTxFailed = errors.New("beginning transaction failed")
var ErrCommitTxFailed = errors.New("committing transaction failed")

// DBAdapter defines the interface for database operations needed by the SQL engines.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)

	// ExecInTx runs all statements in one transaction and returns the summed affected rows.
	// Nothing is committed if any statement fails.
	ExecInTx(ctx context.Context, statements []string) (int64, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
