package neo4jengine

import (
	"fmt"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	paramRows      = "rows"
	paramEmail     = "email"
	paramOldEmail  = "oldEmail"
	paramNewEmail  = "newEmail"
	paramDays      = "thresholdDays"
	paramLimit     = "limit"
	paramStatuses  = "statuses"
	paramActive    = "active"
	columnAffected = "affected"

	propID        = "id"
	propName      = "name"
	propEmail     = "email"
	propAge       = "age"
	propCreatedAt = "createdAt"
	propLastLogin = "lastLogin"
	propStatus    = "status"
	propCountry   = "country"
)

// statements holds the Cypher for one node label.
type statements struct {
	constraint   string
	create       string
	read         string
	update       string
	delete       string
	clear        string
	namedQueries map[benchmark.QueryKind]string
}

func newStatements(label string) statements {
	return statements{
		constraint: fmt.Sprintf(
			"CREATE CONSTRAINT %s_email_unique IF NOT EXISTS FOR (u:%s) REQUIRE u.email IS UNIQUE", label, label),
		create: fmt.Sprintf("UNWIND $%s AS row CREATE (u:%s) SET u = row", paramRows, label),
		read:   fmt.Sprintf("MATCH (u:%s {email: $%s}) RETURN u", label, paramEmail),
		update: fmt.Sprintf(
			"MATCH (u:%s {email: $%s}) SET u.email = $%s RETURN count(u) AS %s", label, paramOldEmail, paramNewEmail, columnAffected),
		delete: fmt.Sprintf("MATCH (u:%s {email: $%s}) DETACH DELETE u", label, paramEmail),
		clear:  fmt.Sprintf("MATCH (u:%s) DETACH DELETE u", label),
		namedQueries: map[benchmark.QueryKind]string{
			benchmark.QueryRetention: fmt.Sprintf(`MATCH (u:%s)
WITH u, toString(date(u.createdAt).year) + '-' + right('0' + toString(date(u.createdAt).month), 2) AS signup_month
RETURN signup_month,
       count(u) AS total_users,
       sum(CASE WHEN date(u.lastLogin) >= date() - duration('P1M') THEN 1 ELSE 0 END) AS active_last_month
ORDER BY signup_month DESC`, label),
			benchmark.QueryDemographic: fmt.Sprintf(`MATCH (u:%s)
WHERE u.status IN $%s
RETURN u.country AS country, u.status AS status, avg(u.age) AS average_age, count(u) AS user_count
ORDER BY country, user_count DESC`, label, paramStatuses),
			benchmark.QueryInactivity: fmt.Sprintf(`MATCH (u:%s)
WHERE u.status = $%s AND u.lastLogin < datetime() - duration({days: $%s})
RETURN u.name AS name, u.email AS email, duration.inDays(u.lastLogin, datetime()).days AS days_inactive
ORDER BY days_inactive DESC
LIMIT $%s`, label, paramActive, paramDays, paramLimit),
		},
	}
}

// namedQueryParams returns the parameters of the named queries, shared by all of them.
func namedQueryParams() map[string]any {
	return map[string]any{
		paramStatuses: []string{string(benchmark.StatusActive), string(benchmark.StatusSuspended)},
		paramActive:   string(benchmark.StatusActive),
		paramDays:     benchmark.InactivityThresholdDays,
		paramLimit:    benchmark.InactivityResultLimit,
	}
}

// recordProperties maps a record to the node properties the driver sends.
func recordProperties(record benchmark.Record) map[string]any {
	return map[string]any{
		propID:        record.ID.String(),
		propName:      record.Name,
		propEmail:     record.Email,
		propAge:       int64(record.Age),
		propCreatedAt: record.CreatedAt.UTC(),
		propLastLogin: record.LastLogin.UTC(),
		propStatus:    string(record.Status),
		propCountry:   string(record.Country),
	}
}

// chunkProperties splits the records into UNWIND parameter lists of at most size maps.
func chunkProperties(records []benchmark.Record, size int) [][]any {
	chunks := make([][]any, 0, len(records)/size+1)

	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))

		chunk := make([]any, 0, end-start)
		for _, record := range records[start:end] {
			chunk = append(chunk, recordProperties(record))
		}

		chunks = append(chunks, chunk)
	}

	return chunks
}
