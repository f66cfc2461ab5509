// Package config provides connection configuration for the benchmark backends.
//
// It contains factory functions for the supported engines: PostgreSQL through pgx.Pool, sql.DB
// and sqlx.DB with benchmark-sized pool settings, plus Neo4j and MongoDB through their official
// drivers. DSNs, URIs and credentials are read from the environment, with defaults that match a
// local docker setup.
package config
