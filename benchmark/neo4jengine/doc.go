// Package neo4jengine provides a Neo4j implementation of benchmark.Backend using the official Go driver.
//
// Records are (:User) nodes with the record fields as properties and a uniqueness constraint on
// email. Every operation runs as a managed transaction in its own session, bulk writes UNWIND a
// list of property maps in chunks of BatchSize inside one write transaction.
package neo4jengine
