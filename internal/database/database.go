// Package database provides MongoDB connection management using the official driver.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect creates a MongoDB client, validates the connection with a ping, and
// returns the named database handle. It retries up to 5 times to accommodate
// containers starting up.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= 5; attempt++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx, readpref.Primary())
			cancel()
			if pingErr == nil {
				return client.Database(dbName), nil
			}
			err = pingErr
			_ = client.Disconnect(ctx)
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to mongodb: %w", err)
}

// Disconnect closes the underlying client of a database handle.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}
