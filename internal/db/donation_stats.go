package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

// GetDonationStats returns the singleton donation stats document.
func (db *Database) GetDonationStats(ctx context.Context) (*model.DonationStatsDocument, error) {
	res := db.collection(model.KVCollection).
		FindOne(ctx, bson.M{"_id": model.DonationStatsID})

	var doc model.DonationStatsDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.DonationStatsID,
				Message: "donation stats not found",
			}
		}
		return nil, err
	}
	return &doc, nil
}

// UpdateDonationFields applies a $set of only the fields that actually
// changed, keeping write amplification at one small partial update per
// tick.
func (db *Database) UpdateDonationFields(ctx context.Context, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	update := bson.M{"$set": bson.M(fields)}
	_, err := db.collection(model.KVCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.DonationStatsID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
