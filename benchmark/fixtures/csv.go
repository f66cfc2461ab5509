package fixtures

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const columnCount = 8

var (
	ErrMalformedHeader = errors.New("malformed csv header")
	ErrMalformedRow    = errors.New("malformed csv row")
)

// Header returns the column names in file order.
func Header() []string {
	return []string{"id", "name", "email", "age", "created_at", "last_login", "status", "country"}
}

// WriteCSV writes the header followed by one row per record.
func WriteCSV(w io.Writer, records []benchmark.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(toRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// ReadCSV reads a file written by WriteCSV.
func ReadCSV(r io.Reader) ([]benchmark.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columnCount
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Join(ErrMalformedHeader, err)
	}

	for i, name := range Header() {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrMalformedHeader, i, header[i], name)
		}
	}

	records := make([]benchmark.Record, 0)

	for line := 2; ; line++ {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			return records, nil
		}

		if readErr != nil {
			return nil, errors.Join(ErrMalformedRow, readErr)
		}

		record, parseErr := fromRow(row)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, parseErr)
		}

		records = append(records, record)
	}
}

func toRow(record benchmark.Record) []string {
	return []string{
		record.ID.String(),
		record.Name,
		record.Email,
		strconv.Itoa(record.Age),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.LastLogin.UTC().Format(time.RFC3339Nano),
		string(record.Status),
		string(record.Country),
	}
}

func fromRow(row []string) (benchmark.Record, error) {
	id, err := uuid.Parse(row[0])
	if err != nil {
		return benchmark.Record{}, err
	}

	age, err := strconv.Atoi(row[3])
	if err != nil {
		return benchmark.Record{}, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row[4])
	if err != nil {
		return benchmark.Record{}, err
	}

	lastLogin, err := time.Parse(time.RFC3339Nano, row[5])
	if err != nil {
		return benchmark.Record{}, err
	}

	return benchmark.Record{
		ID:        id,
		Name:      row[1],
		Email:     row[2],
		Age:       age,
		CreatedAt: createdAt,
		LastLogin: lastLogin,
		Status:    benchmark.Status(row[6]),
		Country:   benchmark.Country(row[7]),
	}, nil
}
