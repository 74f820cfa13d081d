package store

import (
	"context"

	"github.com/booklend/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertPresent(ctx context.Context, present *models.Present) (primitive.ObjectID, error) {
	res, err := db.Presents().InsertOne(ctx, present, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) AllPresents(ctx context.Context) ([]models.Present, error) {
	return db.findPresents(ctx, bson.M{})
}

func (db *DB) PresentsHeldBy(ctx context.Context, userID primitive.ObjectID) ([]models.Present, error) {
	return db.findPresents(ctx, bson.M{"holderId": userID})
}

func (db *DB) PresentsOwnedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Present, error) {
	return db.findPresents(ctx, bson.M{"ownerId": userID})
}

func (db *DB) findPresents(ctx context.Context, filter bson.M) ([]models.Present, error) {
	cur, err := db.Presents().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var presents []models.Present
	if err := cur.All(ctx, &presents); err != nil {
		return nil, err
	}
	return presents, nil
}

// SetPresentHolder reassigns custody of a present in one document write.
func (db *DB) SetPresentHolder(ctx context.Context, id, holderID primitive.ObjectID) error {
	_, err := db.Presents().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"holderId": holderID}})
	return err
}

// DeletePresent removes a present by ID. Returns false if no present had that ID.
func (db *DB) DeletePresent(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Presents().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
