package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

// SaveSnapshot persists the opaque aggregated-state blob.
func (db *Database) SaveSnapshot(ctx context.Context, blob []byte) error {
	doc := model.SnapshotDocument{
		ID:   model.SnapshotID,
		Data: blob,
	}
	_, err := db.collection(model.KVCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.SnapshotID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetSnapshot returns the last persisted blob, or a NotFoundError on a
// fresh database.
func (db *Database) GetSnapshot(ctx context.Context) ([]byte, error) {
	res := db.collection(model.KVCollection).
		FindOne(ctx, bson.M{"_id": model.SnapshotID})

	var doc model.SnapshotDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.SnapshotID,
				Message: "snapshot not found",
			}
		}
		return nil, err
	}
	return doc.Data, nil
}
