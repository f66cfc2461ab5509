package benchmark

import (
	"time"

	"github.com/google/uuid"
)

// Status is the account status of a synthetic user.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// Country is the country of a synthetic user.
type Country string

const (
	CountryUSA       Country = "USA"
	CountryCanada    Country = "Canada"
	CountryUK        Country = "UK"
	CountryAustralia Country = "Australia"
	CountryGermany   Country = "Germany"
	CountryFrance    Country = "France"
	CountryJapan     Country = "Japan"
	CountryBrazil    Country = "Brazil"
	CountryIndia     Country = "India"
	CountryChina     Country = "China"
)

// Statuses returns all valid statuses in their canonical order.
func Statuses() []Status {
	return []Status{StatusActive, StatusSuspended, StatusDeleted}
}

// Countries returns all valid countries in their canonical order.
func Countries() []Country {
	return []Country{
		CountryUSA, CountryCanada, CountryUK, CountryAustralia, CountryGermany,
		CountryFrance, CountryJapan, CountryBrazil, CountryIndia, CountryChina,
	}
}

// Record is one synthetic "users" row.
//
// Email is the primary lookup key and is unique within one generated batch.
// CreatedAt and LastLogin are independent of each other, a LastLogin before CreatedAt is valid.
type Record struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Age       int
	CreatedAt time.Time
	LastLogin time.Time
	Status    Status
	Country   Country
}

// Records is a batch of synthetic records.
type Records = []Record
