package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneropulse/xvb-arbiter/internal/config"
)

var collections = map[string][]mongo.IndexModel{
	HistoryCollection: {
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	},
	WorkersCollection: {
		{Keys: bson.D{{Key: "last_seen", Value: 1}}},
	},
	KVCollection: nil,
}

// Setup creates the collections and indexes. Index creation is idempotent,
// so running Setup against an existing database upgrades the schema in
// place; old documents stay readable because new fields decode to zero
// values.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	// CreateCollection errors when the collection exists; list first.
	existing, err := database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return database.CreateCollection(ctx, name)
}
