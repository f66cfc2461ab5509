package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClientOptions returns client options for the given URI.
// The pool is sized for the concurrency simulator, like the PostgreSQL pools.
func MongoClientOptions(uri string) *options.ClientOptions {
	const defaultMaxPoolSize = uint64(50)
	const defaultMinPoolSize = uint64(2)
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultConnectTimeout = time.Second * 5

	return options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(defaultMaxPoolSize).
		SetMinPoolSize(defaultMinPoolSize).
		SetMaxConnIdleTime(defaultMaxConnIdleTime).
		SetConnectTimeout(defaultConnectTimeout)
}

// MongoClient connects to the given URI and verifies the primary is reachable.
func MongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, MongoClientOptions(uri))
	if err != nil {
		return nil, err
	}

	if pingErr := client.Ping(ctx, readpref.Primary()); pingErr != nil {
		return nil, errors.Join(pingErr, client.Disconnect(ctx))
	}

	return client, nil
}
