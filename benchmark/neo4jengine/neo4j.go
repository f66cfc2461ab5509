package neo4jengine

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	defaultBackendName      = "neo4j"
	defaultLabel            = "User"
	defaultBatchSize        = 1000
	constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

	logMsgOperation      = "neo4jengine operation: "
	logMsgCypherExecuted = "executed cypher"
	logMsgSchemaEnsured  = "schema ensured"
	logMsgCloseFailed    = "failed to close neo4j session"
	logAttrError         = "error"
	logAttrCypher        = "cypher"
	logAttrLabel         = "label"
	logAttrAffected      = "affected"
	logAttrDurationMS    = "duration_ms"
)

var ErrInvalidLabel = errors.New("node label must be a non-empty identifier")
var ErrInvalidBatchSize = errors.New("batch size must be positive")
var ErrCreatingSchemaFailed = errors.New("creating schema failed")

// Backend is a Neo4j benchmark.Backend.
type Backend struct {
	driver     neo4j.DriverWithContext
	database   string
	label      string
	name       string
	batchSize  int
	logger     benchmark.Logger
	statements statements
}

// Option defines a functional option for configuring Backend.
type Option func(*Backend) error

// WithDatabase selects the database, empty means the server default.
func WithDatabase(database string) Option {
	return func(b *Backend) error {
		b.database = database
		return nil
	}
}

// WithLabel sets the node label the records are stored under. Only letters, digits and '_' are allowed.
func WithLabel(label string) Option {
	return func(b *Backend) error {
		if !validLabel(label) {
			return ErrInvalidLabel
		}

		b.label = label

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

// WithBatchSize sets how many nodes one UNWIND statement creates.
func WithBatchSize(size int) Option {
	return func(b *Backend) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}

		b.batchSize = size

		return nil
	}
}

// WithLogger sets the logger, Cypher executions are logged at debug level.
func WithLogger(logger benchmark.Logger) Option {
	return func(b *Backend) error {
		b.logger = logger
		return nil
	}
}

// NewBackend creates a Backend on the driver. Close closes the driver.
func NewBackend(driver neo4j.DriverWithContext, options ...Option) (*Backend, error) {
	if driver == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	b := &Backend{
		driver:    driver,
		label:     defaultLabel,
		name:      defaultBackendName,
		batchSize: defaultBatchSize,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	b.statements = newStatements(b.label)

	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// EnsureSchema creates the unique email constraint if it does not exist.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	_, err := b.write(ctx, func(tx neo4j.ManagedTransaction) (int, error) {
		result, err := tx.Run(ctx, b.statements.constraint, nil)
		if err != nil {
			return 0, err
		}
		_, err = result.Consume(ctx)

		return 0, err
	})
	if err != nil {
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	if b.logger != nil {
		b.logger.Info(logMsgSchemaEnsured, logAttrLabel, b.label)
	}

	return nil
}

// BulkWrite creates all nodes in one write transaction.
func (b *Backend) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	chunks := chunkProperties(records, b.batchSize)

	return b.measure(ctx, benchmark.OperationWrite, func() (int, error) {
		if len(chunks) == 0 {
			return 0, nil
		}

		return b.write(ctx, func(tx neo4j.ManagedTransaction) (int, error) {
			created := 0
			for _, chunk := range chunks {
				result, err := tx.Run(ctx, b.statements.create, map[string]any{paramRows: chunk})
				if err != nil {
					return 0, err
				}

				summary, err := result.Consume(ctx)
				if err != nil {
					return 0, err
				}

				created += summary.Counters().NodesCreated()
			}

			return created, nil
		})
	})
}

// PointRead matches the node with the given email.
func (b *Backend) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationRead, func() (int, error) {
		return b.read(ctx, b.statements.read, map[string]any{paramEmail: email})
	})
}

// PointUpdate sets a new email on the node with oldEmail.
func (b *Backend) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationUpdate, func() (int, error) {
		return b.write(ctx, func(tx neo4j.ManagedTransaction) (int, error) {
			result, err := tx.Run(ctx, b.statements.update, map[string]any{
				paramOldEmail: oldEmail,
				paramNewEmail: newEmail,
			})
			if err != nil {
				return 0, err
			}

			record, err := result.Single(ctx)
			if err != nil {
				return 0, err
			}

			affected, _, err := neo4j.GetRecordValue[int64](record, columnAffected)

			return int(affected), err
		})
	})
}

// PointDelete detaches and deletes the node with the given email.
func (b *Backend) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	return b.measure(ctx, benchmark.OperationDelete, func() (int, error) {
		return b.deleteNodes(ctx, b.statements.delete, map[string]any{paramEmail: email})
	})
}

// NamedQuery runs the analytical Cypher query and reports the number of result rows.
func (b *Backend) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	return b.measure(ctx, kind.Operation(), func() (int, error) {
		query, ok := b.statements.namedQueries[kind]
		if !ok {
			return 0, benchmark.ErrUnknownQueryKind
		}

		return b.read(ctx, query, namedQueryParams())
	})
}

// ClearAll deletes every node with the record label.
func (b *Backend) ClearAll(ctx context.Context) error {
	_, err := b.measure(ctx, benchmark.OperationClear, func() (int, error) {
		return b.deleteNodes(ctx, b.statements.clear, nil)
	})

	return err
}

// Close closes the driver.
func (b *Backend) Close() error {
	return b.driver.Close(context.Background())
}

func (b *Backend) deleteNodes(ctx context.Context, cypher string, params map[string]any) (int, error) {
	return b.write(ctx, func(tx neo4j.ManagedTransaction) (int, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return 0, err
		}

		summary, err := result.Consume(ctx)
		if err != nil {
			return 0, err
		}

		return summary.Counters().NodesDeleted(), nil
	})
}

// read runs the query in a read transaction and counts the returned records.
func (b *Backend) read(ctx context.Context, cypher string, params map[string]any) (int, error) {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: b.database})
	defer b.closeSession(ctx, session)

	count, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return 0, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return 0, err
		}

		return len(records), nil
	})
	if err != nil {
		return 0, err
	}

	b.logCypher(cypher, count)

	return count.(int), nil
}

// write runs work in a write transaction of a fresh session.
func (b *Backend) write(ctx context.Context, work func(tx neo4j.ManagedTransaction) (int, error)) (int, error) {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: b.database})
	defer b.closeSession(ctx, session)

	affected, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	})
	if err != nil {
		return 0, classify(err)
	}

	return affected.(int), nil
}

func (b *Backend) closeSession(ctx context.Context, session neo4j.SessionWithContext) {
	if err := session.Close(ctx); err != nil && b.logger != nil {
		b.logger.Warn(logMsgCloseFailed, logAttrError, err.Error())
	}
}

func (b *Backend) logCypher(cypher string, affected any) {
	if b.logger != nil {
		b.logger.Debug(logMsgCypherExecuted, logAttrCypher, cypher, logAttrAffected, affected)
	}
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

// classify maps a uniqueness constraint violation to benchmark.ErrDuplicateKey.
func classify(err error) error {
	var neo4jErr *neo4j.Neo4jError
	if errors.As(err, &neo4jErr) && neo4jErr.Code == constraintViolationCode {
		return errors.Join(benchmark.ErrDuplicateKey, err)
	}

	return err
}

func validLabel(label string) bool {
	if label == "" {
		return false
	}

	for i, r := range label {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

var _ benchmark.Backend = (*Backend)(nil)
