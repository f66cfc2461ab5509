package boltengine

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is the stored form of a benchmark.Record.
type document struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Age       int               `json:"age"`
	CreatedAt time.Time         `json:"created_at"`
	LastLogin time.Time         `json:"last_login"`
	Status    benchmark.Status  `json:"status"`
	Country   benchmark.Country `json:"country"`
}

func encodeRecord(record benchmark.Record) ([]byte, error) {
	return json.Marshal(document(record))
}

func decodeRecord(data []byte) (benchmark.Record, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return benchmark.Record{}, err
	}

	return benchmark.Record(doc), nil
}
