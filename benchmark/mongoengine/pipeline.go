package mongoengine

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
)

const (
	fieldID        = "_id"
	fieldRecordID  = "record_id"
	fieldName      = "name"
	fieldEmail     = "email"
	fieldAge       = "age"
	fieldCreatedAt = "created_at"
	fieldLastLogin = "last_login"
	fieldStatus    = "status"
	fieldCountry   = "country"

	signupMonthFormat = "%Y-%m"
)

// userDocument is the stored shape of a benchmark.Record.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	RecordID  string             `bson:"record_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       int                `bson:"age"`
	CreatedAt time.Time          `bson:"created_at"`
	LastLogin time.Time          `bson:"last_login"`
	Status    string             `bson:"status"`
	Country   string             `bson:"country"`
}

func newUserDocument(id primitive.ObjectID, record benchmark.Record) userDocument {
	return userDocument{
		ID:        id,
		RecordID:  record.ID.String(),
		Name:      record.Name,
		Email:     record.Email,
		Age:       record.Age,
		CreatedAt: record.CreatedAt.UTC(),
		LastLogin: record.LastLogin.UTC(),
		Status:    string(record.Status),
		Country:   string(record.Country),
	}
}

// newUserDocuments assigns a fresh ObjectID to every record, returning the documents and their ids.
func newUserDocuments(records []benchmark.Record) ([]any, []primitive.ObjectID) {
	docs := make([]any, 0, len(records))
	ids := make([]primitive.ObjectID, 0, len(records))

	for _, record := range records {
		id := primitive.NewObjectID()
		docs = append(docs, newUserDocument(id, record))
		ids = append(ids, id)
	}

	return docs, ids
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []primitive.ObjectID, size int) [][]primitive.ObjectID {
	chunks := make([][]primitive.ObjectID, 0, len(ids)/size+1)

	for start := 0; start < len(ids); start += size {
		chunks = append(chunks, ids[start:min(start+size, len(ids))])
	}

	return chunks
}

func emailFilter(email string) bson.D {
	return bson.D{{Key: fieldEmail, Value: email}}
}

func idsFilter(ids []primitive.ObjectID) bson.D {
	return bson.D{{Key: fieldID, Value: bson.D{{Key: "$in", Value: ids}}}}
}

// pipeline returns the aggregation of the given query kind, evaluated against now.
func pipeline(kind benchmark.QueryKind, now time.Time) (mongo.Pipeline, error) {
	switch kind {
	case benchmark.QueryRetention:
		return retentionPipeline(now), nil
	case benchmark.QueryDemographic:
		return demographicPipeline(), nil
	case benchmark.QueryInactivity:
		return inactivityPipeline(now), nil
	default:
		return nil, benchmark.ErrUnknownQueryKind
	}
}

// retentionPipeline groups users by signup month, newest first, and counts the ones whose
// last login is on or after today minus one month.
func retentionPipeline(now time.Time) mongo.Pipeline {
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "signup_month", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: signupMonthFormat},
				{Key: "date", Value: "$" + fieldCreatedAt},
			}}}},
			{Key: "active_last_month", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gte", Value: bson.A{"$" + fieldLastLogin, cutoff}}}},
				{Key: "then", Value: 1},
				{Key: "else", Value: 0},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$signup_month"},
			{Key: "total_users", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "active_last_month", Value: bson.D{{Key: "$sum", Value: "$active_last_month"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
}

// demographicPipeline returns average age and count per (country, status) of active and suspended
// users, by country ascending, then count descending.
func demographicPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: fieldStatus, Value: bson.D{{Key: "$in", Value: bson.A{
			string(benchmark.StatusActive),
			string(benchmark.StatusSuspended),
		}}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: fieldCountry, Value: "$" + fieldCountry},
				{Key: fieldStatus, Value: "$" + fieldStatus},
			}},
			{Key: "average_age", Value: bson.D{{Key: "$avg", Value: "$" + fieldAge}}},
			{Key: "user_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id." + fieldCountry, Value: 1},
			{Key: "user_count", Value: -1},
		}}},
	}
}

// inactivityPipeline returns the longest inactive active users whose last login is older than the threshold.
func inactivityPipeline(now time.Time) mongo.Pipeline {
	threshold := now.AddDate(0, 0, -benchmark.InactivityThresholdDays)

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: fieldStatus, Value: string(benchmark.StatusActive)},
			{Key: fieldLastLogin, Value: bson.D{{Key: "$lt", Value: threshold}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: fieldName, Value: 1},
			{Key: fieldEmail, Value: 1},
			{Key: "days_inactive", Value: bson.D{{Key: "$subtract", Value: bson.A{now, "$" + fieldLastLogin}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "days_inactive", Value: -1}}}},
		{{Key: "$limit", Value: benchmark.InactivityResultLimit}},
	}
}
