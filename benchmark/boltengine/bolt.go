package boltengine

import (
	"context"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/analytics"
)

const (
	defaultBackendName = "bolt"
	defaultBucketName  = "users"
	defaultOpenTimeout = time.Second
	fileMode           = 0o600

	logMsgOperation   = "boltengine operation: "
	logAttrAffected   = "affected"
	logAttrDurationMS = "duration_ms"
)

var ErrBucketMissing = errors.New("records bucket missing")

// Backend is a bbolt benchmark.Backend.
type Backend struct {
	db     *bolt.DB
	bucket []byte
	name   string
	now    func() time.Time
	noSync bool
	logger benchmark.Logger
}

// Option defines a functional option for configuring Backend.
type Option func(*Backend) error

// WithBucketName sets the bucket the records are stored in.
func WithBucketName(name string) Option {
	return func(b *Backend) error {
		if name == "" {
			return benchmark.ErrEmptyTableName
		}

		b.bucket = []byte(name)

		return nil
	}
}

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

// WithClock sets the clock the named queries evaluate "now" against.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) error {
		b.now = now
		return nil
	}
}

// WithNoSync skips fsync after every commit. Faster, not crash safe.
func WithNoSync() Option {
	return func(b *Backend) error {
		b.noSync = true
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

// Open opens or creates the database file at path and ensures the records bucket exists.
func Open(path string, options ...Option) (*Backend, error) {
	b := &Backend{
		bucket: []byte(defaultBucketName),
		name:   defaultBackendName,
		now:    time.Now,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: defaultOpenTimeout, NoSync: b.noSync})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(b.bucket)
		return createErr
	})
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	b.db = db

	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// Path returns the database file path.
func (b *Backend) Path() string {
	return b.db.Path()
}

// BulkWrite stores all records in one transaction, or none if any email is already taken.
func (b *Backend) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationWrite, func() (int, error) {
		err := b.db.Update(func(tx *bolt.Tx) error {
			bucket, err := b.records(tx)
			if err != nil {
				return err
			}

			seen := make(map[string]struct{}, len(records))
			for _, record := range records {
				if _, dup := seen[record.Email]; dup || bucket.Get([]byte(record.Email)) != nil {
					return benchmark.ErrDuplicateKey
				}
				seen[record.Email] = struct{}{}

				value, encodeErr := encodeRecord(record)
				if encodeErr != nil {
					return errors.Join(benchmark.ErrEncodingRecordFailed, encodeErr)
				}

				if putErr := bucket.Put([]byte(record.Email), value); putErr != nil {
					return putErr
				}
			}

			return nil
		})
		if err != nil {
			return 0, err
		}

		return len(records), nil
	})
}

// PointRead fetches and decodes the record with the given email.
func (b *Backend) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationRead, func() (found int, err error) {
		err = b.db.View(func(tx *bolt.Tx) error {
			bucket, bucketErr := b.records(tx)
			if bucketErr != nil {
				return bucketErr
			}

			value := bucket.Get([]byte(email))
			if value == nil {
				return nil
			}

			if _, decodeErr := decodeRecord(value); decodeErr != nil {
				return errors.Join(benchmark.ErrDecodingRecordFailed, decodeErr)
			}
			found = 1

			return nil
		})

		return found, err
	})
}

// PointUpdate re-keys the record with oldEmail to newEmail.
func (b *Backend) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationUpdate, func() (updated int, err error) {
		err = b.db.Update(func(tx *bolt.Tx) error {
			bucket, bucketErr := b.records(tx)
			if bucketErr != nil {
				return bucketErr
			}

			value := bucket.Get([]byte(oldEmail))
			if value == nil {
				return nil
			}

			if oldEmail == newEmail {
				updated = 1
				return nil
			}

			if bucket.Get([]byte(newEmail)) != nil {
				return benchmark.ErrDuplicateKey
			}

			record, decodeErr := decodeRecord(value)
			if decodeErr != nil {
				return errors.Join(benchmark.ErrDecodingRecordFailed, decodeErr)
			}
			record.Email = newEmail

			newValue, encodeErr := encodeRecord(record)
			if encodeErr != nil {
				return errors.Join(benchmark.ErrEncodingRecordFailed, encodeErr)
			}

			if putErr := bucket.Put([]byte(newEmail), newValue); putErr != nil {
				return putErr
			}

			if deleteErr := bucket.Delete([]byte(oldEmail)); deleteErr != nil {
				return deleteErr
			}
			updated = 1

			return nil
		})

		return updated, err
	})
}

// PointDelete removes the record with the given email.
func (b *Backend) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationDelete, func() (deleted int, err error) {
		err = b.db.Update(func(tx *bolt.Tx) error {
			bucket, bucketErr := b.records(tx)
			if bucketErr != nil {
				return bucketErr
			}

			if bucket.Get([]byte(email)) == nil {
				return nil
			}
			deleted = 1

			return bucket.Delete([]byte(email))
		})

		return deleted, err
	})
}

// NamedQuery decodes every stored record and evaluates the query in process.
func (b *Backend) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	return b.measure(ctx, kind.Operation(), func() (int, error) {
		if !kind.Valid() {
			return 0, benchmark.ErrUnknownQueryKind
		}

		records := make([]benchmark.Record, 0)
		err := b.db.View(func(tx *bolt.Tx) error {
			bucket, bucketErr := b.records(tx)
			if bucketErr != nil {
				return bucketErr
			}

			return bucket.ForEach(func(_, value []byte) error {
				record, decodeErr := decodeRecord(value)
				if decodeErr != nil {
					return errors.Join(benchmark.ErrDecodingRecordFailed, decodeErr)
				}
				records = append(records, record)

				return nil
			})
		})
		if err != nil {
			return 0, err
		}

		return analytics.Evaluate(kind, records, b.now())
	})
}

// ClearAll drops and recreates the records bucket.
func (b *Backend) ClearAll(ctx context.Context) error {
	_, err := b.measure(ctx, benchmark.OperationClear, func() (int, error) {
		return 0, b.db.Update(func(tx *bolt.Tx) error {
			if deleteErr := tx.DeleteBucket(b.bucket); deleteErr != nil && !errors.Is(deleteErr, bolt.ErrBucketNotFound) {
				return deleteErr
			}

			_, createErr := tx.CreateBucket(b.bucket)

			return createErr
		})
	})

	return err
}

// Close closes the database file.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Count returns the number of stored records.
func (b *Backend) Count() (count int, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket, bucketErr := b.records(tx)
		if bucketErr != nil {
			return bucketErr
		}
		count = bucket.Stats().KeyN

		return nil
	})

	return count, err
}

func (b *Backend) records(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		return nil, ErrBucketMissing
	}

	return bucket, nil
}

// measure checks the context, times fn and logs the outcome at debug level.
// bbolt transactions are not cancelable, the context is only checked before they start.
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
