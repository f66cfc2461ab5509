package benchmark

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	emailDomain        = "@example.com"
	updatedEmailPrefix = "updated_"
	maxAge             = 100
	createdAtWindow    = 730 // days
	lastLoginWindow    = 90  // days
)

// SharedUpdateTarget is the email every virtual user renames the shared record to.
const SharedUpdateTarget = "updated@example.com"

// EmailTransform rewrites a generated base email.
type EmailTransform func(email string) string

// EmailPrefix returns a transform that prepends prefix to the email.
func EmailPrefix(prefix string) EmailTransform {
	return func(email string) string {
		return prefix + email
	}
}

// EmailSuffix returns a transform that appends suffix to the email.
func EmailSuffix(suffix string) EmailTransform {
	return func(email string) string {
		return email + suffix
	}
}

// BaseEmail returns the untransformed email of the record at index i.
func BaseEmail(i int) string {
	return fmt.Sprintf("user%d%s", i, emailDomain)
}

// UpdatedEmail returns the key a sampled record is renamed to during the sweep.
func UpdatedEmail(email string) string {
	return updatedEmailPrefix + email
}

// IDSource produces record ids.
type IDSource func() (uuid.UUID, error)

// Generator produces synthetic user records.
// It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	now   func() time.Time
	newID IDSource
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRandSource sets the source of randomness, useful for reproducible batches.
func WithRandSource(src rand.Source) GeneratorOption {
	return func(g *Generator) {
		g.rnd = rand.New(src) //nolint:gosec
	}
}

// WithClock sets the clock the date fields are derived from.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithIDSource sets the record id source.
func WithIDSource(source IDSource) GeneratorOption {
	return func(g *Generator) {
		g.newID = source
	}
}

// NewGenerator creates a Generator with a time-seeded random source, the wall clock and UUIDv7 ids.
func NewGenerator(options ...GeneratorOption) *Generator {
	now := time.Now()

	g := &Generator{
		rnd:   rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))), //nolint:gosec
		now:   time.Now,
		newID: uuid.NewV7,
	}

	for _, option := range options {
		option(g)
	}

	return g
}

// Generate returns exactly n records. Record i gets the name User{i} and the email
// user{i}@example.com, rewritten by the transforms in the given order.
func (g *Generator) Generate(n int, transforms ...EmailTransform) ([]Record, error) {
	if n < 0 {
		return nil, &GenerationError{Count: n, Err: ErrInvalidRecordCount}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	today := truncateToDay(g.now())
	records := make([]Record, 0, n)

	for i := 0; i < n; i++ {
		id, err := g.newID()
		if err != nil {
			return nil, &GenerationError{Count: n, Err: errors.Join(fmt.Errorf("record %d", i), err)}
		}

		email := BaseEmail(i)
		for _, transform := range transforms {
			email = transform(email)
		}

		records = append(records, Record{
			ID:        id,
			Name:      fmt.Sprintf("User%d", i),
			Email:     email,
			Age:       g.rnd.IntN(maxAge),
			CreatedAt: today.AddDate(0, 0, -g.rnd.IntN(createdAtWindow)),
			LastLogin: today.AddDate(0, 0, -g.rnd.IntN(lastLoginWindow)),
			Status:    Statuses()[g.rnd.IntN(len(Statuses()))],
			Country:   Countries()[g.rnd.IntN(len(Countries()))],
		})
	}

	return records, nil
}

// truncateToDay returns UTC midnight of the day t falls on.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
