package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/adapters"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/sqlstore"
)

const (
	defaultBackendName  = "postgres"
	dialectPostgres     = "postgres"
	uniqueViolationCode = "23505"
	logMsgSchemaEnsured = "schema ensured"
	logAttrTable        = "table"
)

var ErrCreatingSchemaFailed = errors.New("creating schema failed")

// Backend is a PostgreSQL benchmark.Backend.
type Backend struct {
	*sqlstore.Store

	db        adapters.DBAdapter
	name      string
	tableName string
	batchSize int
	logger    benchmark.Logger
}

// Option defines a functional option for configuring Backend.
type Option func(*Backend) error

// WithTableName sets the table the records are stored in.
func WithTableName(tableName string) Option {
	return func(b *Backend) error {
		if tableName == "" {
			return benchmark.ErrEmptyTableName
		}

		b.tableName = tableName

		return nil
	}
}

// WithName overrides the backend name used in reports and errors, e.g. "cockroach".
func WithName(name string) Option {
	return func(b *Backend) error {
		if name == "" {
			return benchmark.ErrEmptyBackendName
		}

		b.name = name

		return nil
	}
}

// WithBatchSize sets how many rows one INSERT statement carries.
func WithBatchSize(size int) Option {
	return func(b *Backend) error {
		if size <= 0 {
			return sqlstore.ErrInvalidBatchSize
		}

		b.batchSize = size

		return nil
	}
}

// WithLogger sets the logger for the Backend.
//
// Debug level: SQL statements with affected rows
// Info level: schema creation
// Warn level: non-critical issues like failing to close result rows
// Error level: query building failures.
func WithLogger(logger benchmark.Logger) Option {
	return func(b *Backend) error {
		b.logger = logger
		return nil
	}
}

// NewBackendFromPGXPool creates a new Backend using a pgx Pool with optional configuration.
func NewBackendFromPGXPool(db *pgxpool.Pool, options ...Option) (*Backend, error) {
	if db == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	return newBackend(adapters.NewPGXAdapter(db), func() error { db.Close(); return nil }, options)
}

// NewBackendFromSQLDB creates a new Backend using a sql.DB with optional configuration.
func NewBackendFromSQLDB(db *sql.DB, options ...Option) (*Backend, error) {
	if db == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	return newBackend(adapters.NewSQLAdapter(db), db.Close, options)
}

// NewBackendFromSQLX creates a new Backend using a sqlx.DB with optional configuration.
func NewBackendFromSQLX(db *sqlx.DB, options ...Option) (*Backend, error) {
	if db == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	return newBackend(adapters.NewSQLXAdapter(db), db.Close, options)
}

func newBackend(db adapters.DBAdapter, closer func() error, options []Option) (*Backend, error) {
	b := &Backend{
		db:        db,
		name:      defaultBackendName,
		tableName: sqlstore.DefaultTableName,
		batchSize: sqlstore.DefaultBatchSize,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	store, err := sqlstore.New(db, sqlstore.Config{
		Name:      b.name,
		Table:     b.tableName,
		BatchSize: b.batchSize,
		Logger:    b.logger,
		Closer:    closer,
		Dialect: sqlstore.Dialect{
			Goqu:              goqu.Dialect(dialectPostgres),
			NamedQueries:      namedQueries,
			IsUniqueViolation: isUniqueViolation,
		},
	})
	if err != nil {
		return nil, err
	}

	b.Store = store

	return b, nil
}

// EnsureSchema creates the records table and its unique email constraint if they do not exist.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, CreateTableStatement(b.tableName)); err != nil {
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	if b.logger != nil {
		b.logger.Info(logMsgSchemaEnsured, logAttrTable, b.tableName)
	}

	return nil
}

// CreateTableStatement returns the DDL for the records table.
func CreateTableStatement(tableName string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	age INT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	last_login TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	country TEXT NOT NULL
)`, pq.QuoteIdentifier(tableName))
}

// isUniqueViolation recognizes the unique violation for both pgx and lib/pq errors.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}

	return false
}

var _ benchmark.Backend = (*Backend)(nil)
