// Command import-users loads a CSV file written by generate-users into a PostgreSQL table.
//
// The table is created if missing, truncated, filled with COPY inside one transaction and analyzed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/fixtures"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/postgresengine"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
)

const defaultTable = "users"

func main() {
	source := flag.String("in", "testutil/fixtures/users.csv", "CSV file written by generate-users")
	dsn := flag.String("dsn", config.PostgresDSN(), "PostgreSQL DSN (env BENCH_POSTGRES_DSN, DATABASE_URL)")
	table := flag.String("table", defaultTable, "Target table")
	flag.Parse()

	if err := run(context.Background(), *source, *dsn, *table); err != nil {
		log.Fatalf("Error importing CSV data: %v", err)
	}
}

func run(ctx context.Context, source, dsn, table string) error {
	startTime := time.Now()

	fmt.Printf("Reading %s ...", source)
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}

	records, err := fixtures.ReadCSV(file)
	_ = file.Close() // read-only, nothing to flush
	if err != nil {
		return err
	}
	fmt.Printf(" %s records\n", formatNumber(len(records)))

	poolConfig, err := config.PostgresPGXPoolConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	imported, err := importRecords(ctx, pool, table, records)
	if err != nil {
		return err
	}

	fmt.Printf("Import completed: %s records in %v\n", formatNumber(int(imported)), time.Since(startTime).Round(time.Millisecond))

	return nil
}

// importRecords replaces the content of table with records in one transaction and returns the row count afterward.
func importRecords(ctx context.Context, pool *pgxpool.Pool, table string, records []benchmark.Record) (int64, error) {
	if _, err := pool.Exec(ctx, postgresengine.CreateTableStatement(table)); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // ignored if already committed
	}()

	identifier := pgx.Identifier{table}

	if _, err = tx.Exec(ctx, "LOCK TABLE "+identifier.Sanitize()+" IN ACCESS EXCLUSIVE MODE"); err != nil {
		return 0, fmt.Errorf("failed to lock table: %w", err)
	}

	if _, err = tx.Exec(ctx, "TRUNCATE TABLE "+identifier.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to truncate table: %w", err)
	}

	copyStart := time.Now()
	copied, err := tx.CopyFrom(ctx, identifier, fixtures.Header(), pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		r := records[i]
		return []any{r.ID, r.Name, r.Email, r.Age, r.CreatedAt, r.LastLogin, string(r.Status), string(r.Country)}, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy records: %w", err)
	}
	fmt.Printf("Copied %s records in %v\n", formatNumber(int(copied)), time.Since(copyStart).Round(time.Millisecond))

	if _, err = tx.Exec(ctx, "ANALYZE "+identifier.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to analyze table: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	var count int64
	if err = pool.QueryRow(ctx, "SELECT count(*) FROM "+identifier.Sanitize()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to verify import: %w", err)
	}

	return count, nil
}

func formatNumber(n int) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
	case n >= 100000:
		return fmt.Sprintf("%.0fK", float64(n)/1000)
	case n >= 10000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return strconv.Itoa(n)
	}
}
