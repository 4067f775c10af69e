// Package database owns the shared MongoDB connection.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fornello/pizzeria/config"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Connect opens the MongoDB client, verifies the connection, and keeps
// the shared handles. Returns an error instead of log.Fatal so the
// caller can shut down gracefully.
func Connect(ctx context.Context) error {
	opts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("database: ping: %w", err)
	}

	Client = client
	DB = client.Database(config.MongoDB())
	return nil
}

// Disconnect closes the shared client. Safe to call when Connect never ran.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

// Collection returns a handle in the shared database.
func Collection(name string) *mongo.Collection {
	return DB.Collection(name)
}

// EnsureIndexes creates the unique indexes the data model relies on.
// Idempotent — safe to run at every boot.
func EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{"pizzas", mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{"orders", mongo.IndexModel{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: unique}},
	}

	for _, idx := range indexes {
		if _, err := Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("database: index %s: %w", idx.collection, err)
		}
	}
	return nil
}
