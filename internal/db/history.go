package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

func (db *Database) InsertHistoryPoint(ctx context.Context, point *model.HistoryPointDocument) error {
	_, err := db.collection(model.HistoryCollection).InsertOne(ctx, point)
	return err
}

// PruneHistoryBefore deletes points older than the cutoff and returns how
// many were removed.
func (db *Database) PruneHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.collection(model.HistoryCollection).
		DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GetHistorySince returns points at or after the cutoff, oldest first.
func (db *Database) GetHistorySince(ctx context.Context, cutoff time.Time) ([]model.HistoryPointDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := db.collection(model.HistoryCollection).
		Find(ctx, bson.M{"timestamp": bson.M{"$gte": cutoff}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []model.HistoryPointDocument
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}
