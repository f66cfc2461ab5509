package mongoengine

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	defaultBackendName    = "mongo"
	defaultDatabase       = "benchmark"
	defaultCollection     = "users"
	emailIndexName        = "email_unique"
	defaultRollbackChunks = 10000

	logMsgOperation       = "mongoengine operation: "
	logMsgSchemaEnsured   = "schema ensured"
	logMsgRollbackFailed  = "rolling back partial insert failed"
	logAttrError          = "error"
	logAttrCollection     = "collection"
	logAttrAffected       = "affected"
	logAttrDurationMS     = "duration_ms"
	logAttrRolledBackDocs = "rolled_back"
)

var ErrEmptyDatabaseName = errors.New("empty database name supplied")
var ErrEmptyCollectionName = errors.New("empty collection name supplied")
var ErrInvalidRollbackBatchSize = errors.New("rollback batch size must be positive")
var ErrCreatingSchemaFailed = errors.New("creating schema failed")
var ErrRollbackFailed = errors.New("rolling back partial insert failed")

// Backend is a MongoDB benchmark.Backend.
type Backend struct {
	client            *mongo.Client
	collection        *mongo.Collection
	database          string
	collectionName    string
	name              string
	rollbackBatchSize int
	now               func() time.Time
	logger            benchmark.Logger
}

// Option defines a functional option for configuring Backend.
type Option func(*Backend) error

// WithDatabase selects the database the collection lives in.
func WithDatabase(database string) Option {
	return func(b *Backend) error {
		if database == "" {
			return ErrEmptyDatabaseName
		}

		b.database = database

		return nil
	}
}

// WithCollection sets the collection the records are stored in.
func WithCollection(collection string) Option {
	return func(b *Backend) error {
		if collection == "" {
			return ErrEmptyCollectionName
		}

		b.collectionName = collection

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

// WithRollbackBatchSize sets how many ids one rollback delete matches.
func WithRollbackBatchSize(size int) Option {
	return func(b *Backend) error {
		if size <= 0 {
			return ErrInvalidRollbackBatchSize
		}

		b.rollbackBatchSize = size

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

// NewBackend creates a Backend on a connected client. Close disconnects the client.
func NewBackend(client *mongo.Client, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	b := &Backend{
		client:            client,
		database:          defaultDatabase,
		collectionName:    defaultCollection,
		name:              defaultBackendName,
		rollbackBatchSize: defaultRollbackChunks,
		now:               time.Now,
	}

	for _, option := range opts {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	b.collection = client.Database(b.database).Collection(b.collectionName)

	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// EnsureSchema creates the unique email index if it does not exist.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	_, err := b.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	if err != nil {
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	if b.logger != nil {
		b.logger.Info(logMsgSchemaEnsured, logAttrCollection, b.collectionName)
	}

	return nil
}

// BulkWrite inserts all records with one ordered InsertMany.
// If the insert fails, the documents it already inserted are deleted again.
func (b *Backend) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	docs, ids := newUserDocuments(records)

	return b.measure(ctx, benchmark.OperationWrite, func() (int, error) {
		if len(docs) == 0 {
			return 0, nil
		}

		result, err := b.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		if err != nil {
			return 0, errors.Join(classify(err), b.rollback(ctx, ids))
		}

		return len(result.InsertedIDs), nil
	})
}

// PointRead finds the document with the given email.
func (b *Backend) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationRead, func() (int, error) {
		var doc userDocument

		err := b.collection.FindOne(ctx, emailFilter(email)).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		return 1, nil
	})
}

// PointUpdate sets a new email on the document with oldEmail.
func (b *Backend) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationUpdate, func() (int, error) {
		result, err := b.collection.UpdateOne(ctx, emailFilter(oldEmail), bson.D{
			{Key: "$set", Value: bson.D{{Key: fieldEmail, Value: newEmail}}},
		})
		if err != nil {
			return 0, classify(err)
		}

		return int(result.MatchedCount), nil
	})
}

// PointDelete deletes the document with the given email.
func (b *Backend) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationDelete, func() (int, error) {
		result, err := b.collection.DeleteOne(ctx, emailFilter(email))
		if err != nil {
			return 0, err
		}

		return int(result.DeletedCount), nil
	})
}

// NamedQuery runs the aggregation pipeline of the query kind and counts the result documents.
func (b *Backend) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	stages, pipelineErr := pipeline(kind, b.now())
	if pipelineErr != nil {
		return benchmark.Outcome{}, benchmark.NewBackendError(b.name, kind.Operation(), pipelineErr)
	}

	return b.measure(ctx, kind.Operation(), func() (int, error) {
		cursor, err := b.collection.Aggregate(ctx, stages)
		if err != nil {
			return 0, err
		}
		defer func() { _ = cursor.Close(ctx) }()

		rows := 0
		for cursor.Next(ctx) {
			rows++
		}

		return rows, cursor.Err()
	})
}

// ClearAll deletes every document of the collection. The unique index is kept.
func (b *Backend) ClearAll(ctx context.Context) error {
	_, err := b.measure(ctx, benchmark.OperationClear, func() (int, error) {
		result, err := b.collection.DeleteMany(ctx, bson.D{})
		if err != nil {
			return 0, err
		}

		return int(result.DeletedCount), nil
	})

	return err
}

// Close disconnects the client.
func (b *Backend) Close() error {
	return b.client.Disconnect(context.Background())
}

// rollback deletes the documents of a failed insert by their ids, in chunks that fit into one
// filter document. It runs even when ctx is canceled.
func (b *Backend) rollback(ctx context.Context, ids []primitive.ObjectID) error {
	ctx = context.WithoutCancel(ctx)
	deleted := 0

	for _, chunk := range chunkIDs(ids, b.rollbackBatchSize) {
		result, err := b.collection.DeleteMany(ctx, idsFilter(chunk))
		if err != nil {
			if b.logger != nil {
				b.logger.Error(logMsgRollbackFailed, logAttrError, err.Error(), logAttrRolledBackDocs, deleted)
			}

			return errors.Join(ErrRollbackFailed, err)
		}

		deleted += int(result.DeletedCount)
	}

	return nil
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

// classify maps a unique index violation to benchmark.ErrDuplicateKey.
func classify(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(benchmark.ErrDuplicateKey, err)
	}

	return err
}

var _ benchmark.Backend = (*Backend)(nil)
