// Package boltengine provides an embedded key/value implementation of benchmark.Backend on bbolt.
//
// Every record is stored in one bucket under its email, the value is the JSON encoded record.
// Point operations are single-key transactions. A bulk write is one read-write transaction, so
// a batch with a duplicate email leaves the bucket untouched. bbolt has no query language: the
// named queries scan and decode the whole bucket and aggregate in process.
package boltengine
