package store

import (
	"context"

	"github.com/booklend/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// AllBooks returns every book in natural (insertion) order.
func (db *DB) AllBooks(ctx context.Context) ([]models.Book, error) {
	return db.findBooks(ctx, bson.M{})
}

func (db *DB) BooksHeldBy(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	return db.findBooks(ctx, bson.M{"holderId": userID})
}

func (db *DB) BooksOwnedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	return db.findBooks(ctx, bson.M{"ownerId": userID})
}

func (db *DB) findBooks(ctx context.Context, filter bson.M) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SetBookParties reassigns a book's owner and holder in one document write.
func (db *DB) SetBookParties(ctx context.Context, id, ownerID, holderID primitive.ObjectID) error {
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"ownerId": ownerID, "holderId": holderID}})
	return err
}

// DeleteBook removes a book by ID. Returns false if no book had that ID.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Books().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
