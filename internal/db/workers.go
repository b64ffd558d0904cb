package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

// UpsertWorkers writes the given workers keyed by name, refreshing last_seen
// for the ones already known.
func (db *Database) UpsertWorkers(ctx context.Context, workers []model.WorkerDocument) error {
	if len(workers) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(workers))
	for _, w := range workers {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": w.Name}).
			SetUpdate(bson.M{"$set": bson.M{"ip": w.IP, "last_seen": w.LastSeen}}).
			SetUpsert(true))
	}

	_, err := db.collection(model.WorkersCollection).
		BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// PruneWorkersBefore removes workers not seen since the cutoff.
func (db *Database) PruneWorkersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.collection(model.WorkersCollection).
		DeleteMany(ctx, bson.M{"last_seen": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (db *Database) GetWorkers(ctx context.Context) ([]model.WorkerDocument, error) {
	cursor, err := db.collection(model.WorkersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workers []model.WorkerDocument
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}
