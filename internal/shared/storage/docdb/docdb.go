package docdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultDatabase = "resumes"

// Open connects to MongoDB, verifies the connection with a ping, and
// returns the named database handle together with its client.
func Open(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, nil, fmt.Errorf("MONGO_URI is required")
	}
	if strings.TrimSpace(database) == "" {
		database = defaultDatabase
	}

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(database), nil
}
