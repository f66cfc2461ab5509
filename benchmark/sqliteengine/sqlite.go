package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/adapters"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/sqlstore"
)

const (
	defaultBackendName  = "sqlite"
	defaultBatchSize    = 500
	driverName          = "sqlite"
	dialectSQLite       = "sqlite3"
	timeLayout          = "2006-01-02 15:04:05"
	InMemory            = ":memory:"
	logMsgSchemaEnsured = "schema ensured"
	logAttrTable        = "table"
)

var ErrCreatingSchemaFailed = errors.New("creating schema failed")

// Backend is a SQLite benchmark.Backend.
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

// WithLogger sets the logger, SQL statements are logged at debug level.
func WithLogger(logger benchmark.Logger) Option {
	return func(b *Backend) error {
		b.logger = logger
		return nil
	}
}

// Open opens the database file at path, or a private in-memory database for InMemory.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, errors.Join(pingErr, db.Close())
	}

	return db, nil
}

// NewBackend creates a new Backend on an opened database. Close closes db.
func NewBackend(db *sql.DB, options ...Option) (*Backend, error) {
	if db == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	b := &Backend{
		db:        adapters.NewSQLAdapter(db),
		name:      defaultBackendName,
		tableName: sqlstore.DefaultTableName,
		batchSize: defaultBatchSize,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	store, err := sqlstore.New(b.db, sqlstore.Config{
		Name:      b.name,
		Table:     b.tableName,
		BatchSize: b.batchSize,
		Logger:    b.logger,
		Closer:    db.Close,
		Dialect: sqlstore.Dialect{
			Goqu:              goqu.Dialect(dialectSQLite),
			NamedQueries:      namedQueries,
			TimeValue:         timeValue,
			IsUniqueViolation: isUniqueViolation,
		},
	})
	if err != nil {
		return nil, err
	}

	b.Store = store

	return b, nil
}

// EnsureSchema creates the records table and its email index if they do not exist.
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
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	age INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	last_login TEXT NOT NULL,
	status TEXT NOT NULL,
	country TEXT NOT NULL
)`, quoteIdentifier(tableName))
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func timeValue(t time.Time) any {
	return t.UTC().Format(timeLayout)
}

// isUniqueViolation recognizes a failed UNIQUE constraint, with or without extended result codes.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	if sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return true
	}

	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}

var _ benchmark.Backend = (*Backend)(nil)
