package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book has exactly one owner and one holder at any time, both referencing
// an existing user. A freshly added book has owner == holder == the user
// who added it.
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    string             `bson:"author" json:"author"`
	Title     string             `bson:"title" json:"title"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	HolderID  primitive.ObjectID `bson:"holderId" json:"holderId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
