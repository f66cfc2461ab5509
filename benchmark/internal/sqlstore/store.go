package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/adapters"
)

const (
	DefaultTableName = "users"
	DefaultBatchSize = 1000

	ColID        = "id"
	ColName      = "name"
	ColEmail     = "email"
	ColAge       = "age"
	ColCreatedAt = "created_at"
	ColLastLogin = "last_login"
	ColStatus    = "status"
	ColCountry   = "country"

	logMsgBuildQueryFailed = "failed to build query"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgCloseRowsFailed  = "failed to close database rows"
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrAffected        = "affected"
	logAttrStatements      = "statements"
	logAttrDurationMS      = "duration_ms"
)

var ErrInvalidBatchSize = errors.New("batch size must be positive")

// NamedQuery is the SQL text of one analytical query and the number of columns it selects.
type NamedQuery struct {
	SQL     string
	Columns int
}

// Dialect carries everything that differs between SQL engines.
type Dialect struct {
	Goqu goqu.DialectWrapper

	// NamedQueries renders the analytical queries for the given table.
	NamedQueries func(table string) (map[benchmark.QueryKind]NamedQuery, error)

	// TimeValue converts a timestamp into the value bound into INSERT statements.
	// Nil binds the time.Time as is.
	TimeValue func(time.Time) any

	// IsUniqueViolation reports whether err was caused by the unique email constraint.
	IsUniqueViolation func(err error) bool
}

// Config configures a Store.
type Config struct {
	Name      string
	Table     string
	BatchSize int
	Dialect   Dialect
	Logger    benchmark.Logger

	// Closer releases the underlying connection, nil means Close only marks the store closed.
	Closer func() error
}

// Store is a benchmark.Backend over a relational table with one row per record.
type Store struct {
	db           adapters.DBAdapter
	cfg          Config
	namedQueries map[benchmark.QueryKind]NamedQuery
}

// New creates a Store. Empty Table and zero BatchSize fall back to the defaults.
func New(db adapters.DBAdapter, cfg Config) (*Store, error) {
	if db == nil {
		return nil, benchmark.ErrNilDatabaseConnection
	}

	if cfg.Name == "" {
		return nil, benchmark.ErrEmptyBackendName
	}

	if cfg.Table == "" {
		cfg.Table = DefaultTableName
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.BatchSize < 0 {
		return nil, ErrInvalidBatchSize
	}

	namedQueries, err := cfg.Dialect.NamedQueries(cfg.Table)
	if err != nil {
		return nil, errors.Join(benchmark.ErrBuildingQueryFailed, err)
	}

	return &Store{
		db:           db,
		cfg:          cfg,
		namedQueries: namedQueries,
	}, nil
}

// Name returns the backend name.
func (s *Store) Name() string {
	return s.cfg.Name
}

// Table returns the table the store works on.
func (s *Store) Table() string {
	return s.cfg.Table
}

// BulkWrite inserts the records in batches inside one transaction.
func (s *Store) BulkWrite(ctx context.Context, records []benchmark.Record) (benchmark.Outcome, error) {
	statements, err := s.BuildInsertStatements(records)
	if err != nil {
		s.logBuildFailed(err)
		return benchmark.Outcome{}, benchmark.NewBackendError(s.cfg.Name, benchmark.OperationWrite, err)
	}

	return s.measure(ctx, benchmark.OperationWrite, func() (int, error) {
		if len(statements) == 0 {
			return 0, nil
		}

		affected, execErr := s.db.ExecInTx(ctx, statements)
		if execErr != nil {
			return 0, s.classify(execErr)
		}

		s.logSQL(benchmark.OperationWrite, logAttrStatements, len(statements), logAttrAffected, affected)

		return int(affected), nil
	})
}

// PointRead selects the record with the given email.
func (s *Store) PointRead(ctx context.Context, email string) (benchmark.Outcome, error) {
	query, _, err := s.cfg.Dialect.Goqu.
		From(s.cfg.Table).
		Select(ColID, ColName, ColEmail, ColAge, ColCreatedAt, ColLastLogin, ColStatus, ColCountry).
		Where(goqu.C(ColEmail).Eq(email)).
		ToSQL()
	if err != nil {
		return s.buildFailed(benchmark.OperationRead, err)
	}

	return s.measure(ctx, benchmark.OperationRead, func() (int, error) {
		return s.countRows(ctx, benchmark.OperationRead, query, 8)
	})
}

// PointUpdate changes the email of the record with oldEmail.
func (s *Store) PointUpdate(ctx context.Context, oldEmail, newEmail string) (benchmark.Outcome, error) {
	query, _, err := s.cfg.Dialect.Goqu.
		Update(s.cfg.Table).
		Set(goqu.Record{ColEmail: newEmail}).
		Where(goqu.C(ColEmail).Eq(oldEmail)).
		ToSQL()
	if err != nil {
		return s.buildFailed(benchmark.OperationUpdate, err)
	}

	return s.measure(ctx, benchmark.OperationUpdate, func() (int, error) {
		return s.exec(ctx, benchmark.OperationUpdate, query)
	})
}

// PointDelete deletes the record with the given email.
func (s *Store) PointDelete(ctx context.Context, email string) (benchmark.Outcome, error) {
	query, _, err := s.cfg.Dialect.Goqu.
		Delete(s.cfg.Table).
		Where(goqu.C(ColEmail).Eq(email)).
		ToSQL()
	if err != nil {
		return s.buildFailed(benchmark.OperationDelete, err)
	}

	return s.measure(ctx, benchmark.OperationDelete, func() (int, error) {
		return s.exec(ctx, benchmark.OperationDelete, query)
	})
}

// NamedQuery runs the analytical query and reports the number of result rows.
func (s *Store) NamedQuery(ctx context.Context, kind benchmark.QueryKind) (benchmark.Outcome, error) {
	namedQuery, ok := s.namedQueries[kind]
	if !ok {
		return benchmark.Outcome{}, benchmark.NewBackendError(s.cfg.Name, kind.Operation(), benchmark.ErrUnknownQueryKind)
	}

	return s.measure(ctx, kind.Operation(), func() (int, error) {
		return s.countRows(ctx, kind.Operation(), namedQuery.SQL, namedQuery.Columns)
	})
}

// ClearAll deletes every row of the table.
func (s *Store) ClearAll(ctx context.Context) error {
	query, _, err := s.cfg.Dialect.Goqu.Delete(s.cfg.Table).ToSQL()
	if err != nil {
		_, buildErr := s.buildFailed(benchmark.OperationClear, err)
		return buildErr
	}

	_, err = s.measure(ctx, benchmark.OperationClear, func() (int, error) {
		return s.exec(ctx, benchmark.OperationClear, query)
	})

	return err
}

// Close releases the connection through the configured Closer.
func (s *Store) Close() error {
	if s.cfg.Closer == nil {
		return nil
	}

	return s.cfg.Closer()
}

// BuildInsertStatements renders one multi-row INSERT per batch.
func (s *Store) BuildInsertStatements(records []benchmark.Record) ([]string, error) {
	statements := make([]string, 0, len(records)/s.cfg.BatchSize+1)

	for start := 0; start < len(records); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(records))

		rows := make([]any, 0, end-start)
		for _, record := range records[start:end] {
			rows = append(rows, goqu.Record{
				ColID:        record.ID.String(),
				ColName:      record.Name,
				ColEmail:     record.Email,
				ColAge:       record.Age,
				ColCreatedAt: s.timeValue(record.CreatedAt),
				ColLastLogin: s.timeValue(record.LastLogin),
				ColStatus:    string(record.Status),
				ColCountry:   string(record.Country),
			})
		}

		statement, _, err := s.cfg.Dialect.Goqu.Insert(s.cfg.Table).Rows(rows...).ToSQL()
		if err != nil {
			return nil, errors.Join(benchmark.ErrBuildingQueryFailed, err)
		}

		statements = append(statements, statement)
	}

	return statements, nil
}

func (s *Store) timeValue(t time.Time) any {
	if s.cfg.Dialect.TimeValue == nil {
		return t
	}

	return s.cfg.Dialect.TimeValue(t)
}

func (s *Store) exec(ctx context.Context, operation benchmark.Operation, query string) (int, error) {
	result, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, s.classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	s.logSQL(operation, logAttrQuery, query, logAttrAffected, affected)

	return int(affected), nil
}

// countRows runs a query and scans every row, so the full result is transferred.
func (s *Store) countRows(ctx context.Context, operation benchmark.Operation, query string, columns int) (count int, err error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return 0, err
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil && s.cfg.Logger != nil {
			s.cfg.Logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}()

	dest := make([]any, columns)
	for i := range dest {
		dest[i] = new(any)
	}

	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return 0, errors.Join(benchmark.ErrScanningRowsFailed, err)
		}
		count++
	}

	if err = rows.Err(); err != nil {
		return 0, errors.Join(benchmark.ErrScanningRowsFailed, err)
	}

	s.logSQL(operation, logAttrQuery, query, logAttrAffected, count)

	return count, nil
}

func (s *Store) classify(err error) error {
	if s.cfg.Dialect.IsUniqueViolation != nil && s.cfg.Dialect.IsUniqueViolation(err) {
		return errors.Join(benchmark.ErrDuplicateKey, err)
	}

	return err
}

func (s *Store) measure(ctx context.Context, operation benchmark.Operation, fn func() (int, error)) (benchmark.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return benchmark.Outcome{}, benchmark.NewBackendError(s.cfg.Name, operation, err)
	}

	outcome, err := benchmark.Measure(s.cfg.Name, operation, fn)
	if err != nil && s.cfg.Logger != nil {
		s.cfg.Logger.Debug(string(operation)+" failed", logAttrError, err.Error())
	}

	return outcome, err
}

func (s *Store) buildFailed(operation benchmark.Operation, err error) (benchmark.Outcome, error) {
	s.logBuildFailed(err)
	return benchmark.Outcome{}, benchmark.NewBackendError(s.cfg.Name, operation, errors.Join(benchmark.ErrBuildingQueryFailed, err))
}

func (s *Store) logBuildFailed(err error) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Error(logMsgBuildQueryFailed, logAttrError, err.Error())
	}
}

func (s *Store) logSQL(operation benchmark.Operation, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(logMsgSQLExecuted+string(operation), args...)
	}
}

var _ benchmark.Backend = (*Store)(nil)
