// Package analytics evaluates the three named analytical queries over an in-process record set.
//
// Engines without a query language of their own (the in-memory and the bbolt engine) use it,
// so their named queries produce the same rows a SQL engine would.
package analytics

import (
	"sort"
	"time"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const signupMonthLayout = "2006-01"

// RetentionRow is one signup month of the retention query.
type RetentionRow struct {
	SignupMonth     string
	TotalUsers      int
	ActiveLastMonth int
}

// DemographicRow is one (country, status) group of the demographic query.
type DemographicRow struct {
	Country    benchmark.Country
	Status     benchmark.Status
	AverageAge float64
	UserCount  int
}

// InactiveUser is one row of the inactivity query.
type InactiveUser struct {
	Name         string
	Email        string
	DaysInactive int
}

// Retention groups records by signup month, newest month first, and counts the users
// whose last login is on or after today minus one month.
func Retention(records []benchmark.Record, now time.Time) []RetentionRow {
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	byMonth := make(map[string]*RetentionRow)
	for _, record := range records {
		month := record.CreatedAt.UTC().Format(signupMonthLayout)

		row, ok := byMonth[month]
		if !ok {
			row = &RetentionRow{SignupMonth: month}
			byMonth[month] = row
		}

		row.TotalUsers++
		if !record.LastLogin.Before(cutoff) {
			row.ActiveLastMonth++
		}
	}

	rows := make([]RetentionRow, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].SignupMonth > rows[j].SignupMonth
	})

	return rows
}

// Demographics returns average age and count per (country, status) for active and suspended users,
// ordered by country ascending, then user count descending.
func Demographics(records []benchmark.Record) []DemographicRow {
	type group struct {
		country benchmark.Country
		status  benchmark.Status
	}

	type acc struct {
		ageSum int
		count  int
	}

	groups := make(map[group]*acc)
	for _, record := range records {
		if record.Status != benchmark.StatusActive && record.Status != benchmark.StatusSuspended {
			continue
		}

		key := group{country: record.Country, status: record.Status}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
		}

		a.ageSum += record.Age
		a.count++
	}

	rows := make([]DemographicRow, 0, len(groups))
	for key, a := range groups {
		rows = append(rows, DemographicRow{
			Country:    key.country,
			Status:     key.status,
			AverageAge: float64(a.ageSum) / float64(a.count),
			UserCount:  a.count,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		if rows[i].UserCount != rows[j].UserCount {
			return rows[i].UserCount > rows[j].UserCount
		}

		return rows[i].Status < rows[j].Status
	})

	return rows
}

// Inactivity returns active users whose last login is older than the inactivity threshold,
// longest inactive first, limited to benchmark.InactivityResultLimit rows.
func Inactivity(records []benchmark.Record, now time.Time) []InactiveUser {
	threshold := now.AddDate(0, 0, -benchmark.InactivityThresholdDays)

	rows := make([]InactiveUser, 0)
	for _, record := range records {
		if record.Status != benchmark.StatusActive || !record.LastLogin.Before(threshold) {
			continue
		}

		rows = append(rows, InactiveUser{
			Name:         record.Name,
			Email:        record.Email,
			DaysInactive: int(now.Sub(record.LastLogin).Hours() / 24),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DaysInactive > rows[j].DaysInactive
	})

	if len(rows) > benchmark.InactivityResultLimit {
		rows = rows[:benchmark.InactivityResultLimit]
	}

	return rows
}

// Evaluate runs the query of the given kind and returns its result row count.
func Evaluate(kind benchmark.QueryKind, records []benchmark.Record, now time.Time) (int, error) {
	switch kind {
	case benchmark.QueryRetention:
		return len(Retention(records, now)), nil
	case benchmark.QueryDemographic:
		return len(Demographics(records)), nil
	case benchmark.QueryInactivity:
		return len(Inactivity(records, now)), nil
	default:
		return 0, benchmark.ErrUnknownQueryKind
	}
}
