package adapters

import (
	"context"
	"database/sql"
	"errors"
)

// stdRows wraps standard library sql.Rows to implement DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Err returns the error that ended the iteration, if any.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// execInStdTx runs the statements on an already started database/sql transaction.
func execInStdTx(ctx context.Context, tx *sql.Tx, statements []string) (int64, error) {
	var affected int64

	for _, statement := range statements {
		result, err := tx.ExecContext(ctx, statement)
		if err != nil {
			return 0, errors.Join(err, tx.Rollback())
		}

		n, err := result.RowsAffected()
		if err != nil {
			return 0, errors.Join(err, tx.Rollback())
		}

		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Join(ErrCommitTxFailed, err)
	}

	return affected, nil
}
