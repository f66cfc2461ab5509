package config

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver creates a driver for the given URI and verifies the server is reachable.
func Neo4jDriver(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	if verifyErr := driver.VerifyConnectivity(ctx); verifyErr != nil {
		return nil, errors.Join(verifyErr, driver.Close(ctx))
	}

	return driver, nil
}
