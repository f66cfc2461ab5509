package postgresengine

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/internal/sqlstore"
)

const (
	aliasSignupMonth     = "signup_month"
	aliasTotalUsers      = "total_users"
	aliasActiveLastMonth = "active_last_month"
	aliasAverageAge      = "average_age"
	aliasUserCount       = "user_count"
	aliasDaysInactive    = "days_inactive"

	exprSignupMonth     = "TO_CHAR(created_at, 'YYYY-MM')"
	exprActiveLastMonth = "CASE WHEN last_login >= NOW()::DATE - INTERVAL '1 month' THEN 1 ELSE 0 END"
	exprDaysInactive    = "DATE_PART('day', NOW() - last_login)"
	exprInactiveSince   = "last_login < NOW() - INTERVAL '%d days'"
)

// namedQueries renders the retention, demographic and inactivity queries for the table.
// They are valid on PostgreSQL and CockroachDB.
func namedQueries(table string) (map[benchmark.QueryKind]sqlstore.NamedQuery, error) {
	dialect := goqu.Dialect(dialectPostgres)

	retention, _, err := dialect.
		From(table).
		Select(
			goqu.L(exprSignupMonth).As(aliasSignupMonth),
			goqu.COUNT(goqu.Star()).As(aliasTotalUsers),
			goqu.SUM(goqu.L(exprActiveLastMonth)).As(aliasActiveLastMonth),
		).
		GroupBy(goqu.C(aliasSignupMonth)).
		Order(goqu.C(aliasSignupMonth).Desc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	demographic, _, err := dialect.
		From(table).
		Select(
			goqu.C(sqlstore.ColCountry),
			goqu.C(sqlstore.ColStatus),
			goqu.AVG(sqlstore.ColAge).As(aliasAverageAge),
			goqu.COUNT(goqu.Star()).As(aliasUserCount),
		).
		Where(goqu.C(sqlstore.ColStatus).In(string(benchmark.StatusActive), string(benchmark.StatusSuspended))).
		GroupBy(goqu.C(sqlstore.ColCountry), goqu.C(sqlstore.ColStatus)).
		Order(goqu.C(sqlstore.ColCountry).Asc(), goqu.C(aliasUserCount).Desc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	inactivity, _, err := dialect.
		From(table).
		Select(
			goqu.C(sqlstore.ColName),
			goqu.C(sqlstore.ColEmail),
			goqu.L(exprDaysInactive).As(aliasDaysInactive),
		).
		Where(
			goqu.C(sqlstore.ColStatus).Eq(string(benchmark.StatusActive)),
			goqu.L(fmt.Sprintf(exprInactiveSince, benchmark.InactivityThresholdDays)),
		).
		Order(goqu.C(aliasDaysInactive).Desc()).
		Limit(benchmark.InactivityResultLimit).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return map[benchmark.QueryKind]sqlstore.NamedQuery{
		benchmark.QueryRetention:   {SQL: retention, Columns: 3},
		benchmark.QueryDemographic: {SQL: demographic, Columns: 4},
		benchmark.QueryInactivity:  {SQL: inactivity, Columns: 3},
	}, nil
}
