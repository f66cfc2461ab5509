// Package mongoengine provides a MongoDB implementation of benchmark.Backend using the official Go driver.
//
// Records are documents of one collection with a unique index on email. Bulk writes are one
// ordered InsertMany. A standalone server has no multi-document transactions, so a failed insert
// is rolled back by deleting the documents this call inserted, which keeps BulkWrite all-or-nothing
// for every other caller of the backend. The named queries are aggregation pipelines.
package mongoengine
