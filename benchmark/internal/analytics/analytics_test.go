package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/analytics"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(email string, age int, status benchmark.Status, country benchmark.Country, createdAt, lastLogin time.Time) benchmark.Record {
	return benchmark.Record{
		Name:      "User " + email,
		Email:     email,
		Age:       age,
		Status:    status,
		Country:   country,
		CreatedAt: createdAt,
		LastLogin: lastLogin,
	}
}

func Test_Retention_When_RecordsSpanMonths_Then_GroupedNewestFirstWithActiveCounts(t *testing.T) {
	// arrange
	records := []benchmark.Record{
		record("a", 20, benchmark.StatusActive, benchmark.CountryUK, day(2025, 3, 2), day(2025, 6, 1)),
		record("b", 30, benchmark.StatusActive, benchmark.CountryUK, day(2025, 3, 20), day(2025, 4, 1)),
		record("c", 40, benchmark.StatusDeleted, benchmark.CountryUK, day(2024, 11, 5), day(2025, 5, 15)),
	}

	// act
	rows := analytics.Retention(records, now)

	// assert
	require.Len(t, rows, 2)
	assert.Equal(t, analytics.RetentionRow{SignupMonth: "2025-03", TotalUsers: 2, ActiveLastMonth: 1}, rows[0])
	assert.Equal(t, analytics.RetentionRow{SignupMonth: "2024-11", TotalUsers: 1, ActiveLastMonth: 1}, rows[1])
}

func Test_Demographics_When_DeletedUsersExist_Then_TheyAreExcluded(t *testing.T) {
	// arrange
	records := []benchmark.Record{
		record("a", 20, benchmark.StatusActive, benchmark.CountryUSA, now, now),
		record("b", 40, benchmark.StatusActive, benchmark.CountryUSA, now, now),
		record("c", 50, benchmark.StatusSuspended, benchmark.CountryUSA, now, now),
		record("d", 60, benchmark.StatusDeleted, benchmark.CountryUSA, now, now),
		record("e", 10, benchmark.StatusSuspended, benchmark.CountryBrazil, now, now),
	}

	// act
	rows := analytics.Demographics(records)

	// assert
	require.Len(t, rows, 3)
	assert.Equal(t, benchmark.CountryBrazil, rows[0].Country)
	assert.Equal(t, benchmark.CountryUSA, rows[1].Country)
	assert.Equal(t, benchmark.StatusActive, rows[1].Status)
	assert.Equal(t, 2, rows[1].UserCount)
	assert.InDelta(t, 30.0, rows[1].AverageAge, 0.0001)
	assert.Equal(t, benchmark.StatusSuspended, rows[2].Status)
}

func Test_Inactivity_When_ManyInactiveUsers_Then_LimitedAndSortedByDaysInactive(t *testing.T) {
	// arrange
	records := make([]benchmark.Record, 0, 120)
	for i := 0; i < 120; i++ {
		records = append(records, record("x", 30, benchmark.StatusActive, benchmark.CountryJapan, day(2023, 1, 1), now.AddDate(0, 0, -181-i)))
	}
	records = append(records,
		record("recent", 30, benchmark.StatusActive, benchmark.CountryJapan, day(2023, 1, 1), now.AddDate(0, 0, -10)),
		record("suspended", 30, benchmark.StatusSuspended, benchmark.CountryJapan, day(2023, 1, 1), now.AddDate(0, 0, -400)),
	)

	// act
	rows := analytics.Inactivity(records, now)

	// assert
	require.Len(t, rows, benchmark.InactivityResultLimit)
	assert.Equal(t, 181+119, rows[0].DaysInactive)
	assert.GreaterOrEqual(t, rows[0].DaysInactive, rows[len(rows)-1].DaysInactive)
}

func Test_Evaluate_When_KindIsUnknown_Then_ErrorIsReturned(t *testing.T) {
	// act
	_, err := analytics.Evaluate(benchmark.QueryKind("bogus"), nil, now)

	// assert
	assert.ErrorIs(t, err, benchmark.ErrUnknownQueryKind)
}

func Test_Evaluate_When_GeneratedRecords_Then_InactivityIsEmpty(t *testing.T) {
	// setup
	generator := benchmark.NewGenerator(benchmark.WithClock(func() time.Time { return now }))
	records, err := generator.Generate(300)
	require.NoError(t, err)

	// act
	count, evalErr := analytics.Evaluate(benchmark.QueryInactivity, records, now)

	// assert
	require.NoError(t, evalErr)
	assert.Equal(t, 0, count, "generated last logins are at most 90 days old")
}
