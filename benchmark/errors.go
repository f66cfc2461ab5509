package benchmark

import (
	"errors"
	"fmt"
)

var ErrBackendOperationFailed = errors.New("backend operation failed")
var ErrDuplicateKey = errors.New("duplicate email")
var ErrUnknownQueryKind = errors.New("unknown query kind")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrEmptyBackendName = errors.New("empty backend name supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrScanningRowsFailed = errors.New("scanning result rows failed")
var ErrEncodingRecordFailed = errors.New("encoding record failed")
var ErrDecodingRecordFailed = errors.New("decoding record failed")

var ErrGenerationFailed = errors.New("record generation failed")
var ErrInvalidRecordCount = errors.New("record count must not be negative")

// BackendError reports a failed Backend operation.
// It always matches ErrBackendOperationFailed via errors.Is and unwraps to the underlying cause.
type BackendError struct {
	Backend   string
	Operation Operation
	Err       error
}

// NewBackendError wraps err into a *BackendError for the given backend and operation.
// A nil err yields nil.
func NewBackendError(backend string, operation Operation, err error) error {
	if err == nil {
		return nil
	}

	var existing *BackendError
	if errors.As(err, &existing) {
		return err
	}

	return &BackendError{Backend: backend, Operation: operation, Err: err}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s on %s: %v", ErrBackendOperationFailed, e.Operation, e.Backend, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackendOperationFailed, e.Err}
}

// GenerationError reports that a batch of synthetic records could not be produced.
// It is fatal to the caller.
type GenerationError struct {
	Count int
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: count %d: %v", ErrGenerationFailed, e.Count, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}
