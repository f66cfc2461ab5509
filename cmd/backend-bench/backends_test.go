package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/memengine"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/sqliteengine"
)

var errConstructorFailed = errors.New("constructor failed")

func Test_closeOnFailure_When_ConstructorFailed_Then_ConnectionIsClosed(t *testing.T) {
	// setup
	ctx := context.Background()
	db, err := sqliteengine.Open(ctx, sqliteengine.InMemory)
	require.NoError(t, err)

	// act
	backend, err := closeOnFailure((*sqliteengine.Backend)(nil), errConstructorFailed, db.Close)

	// assert
	assert.ErrorIs(t, err, errConstructorFailed)
	assert.Nil(t, backend)
	assert.Error(t, db.PingContext(ctx), "the database is closed")
}

func Test_closeOnFailure_When_ClosingFailsToo_Then_BothErrorsAreReturned(t *testing.T) {
	// setup
	errCloseFailed := errors.New("close failed")

	// act
	_, err := closeOnFailure((*memengine.Backend)(nil), errConstructorFailed, func() error { return errCloseFailed })

	// assert
	assert.ErrorIs(t, err, errConstructorFailed)
	assert.ErrorIs(t, err, errCloseFailed)
}

func Test_closeOnFailure_When_ConstructorSucceeded_Then_ConnectionStaysOpen(t *testing.T) {
	// setup
	memory, err := memengine.NewBackend()
	require.NoError(t, err)
	closed := false

	// act
	backend, err := closeOnFailure(memory, nil, func() error {
		closed = true
		return nil
	})

	// assert
	require.NoError(t, err)
	assert.Same(t, memory, backend)
	assert.False(t, closed)
}

func Test_openBackend_When_MongoIsUnreachable_Then_ErrorIsReturned(t *testing.T) {
	// setup
	cfg := defaultConfig()
	cfg.Backend = backendMongo
	cfg.MongoURI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=50"

	// act
	backend, err := openBackend(context.Background(), cfg, nil)

	// assert
	assert.Error(t, err, "nothing listens on port 1")
	assert.Nil(t, backend)
}
