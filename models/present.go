package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Present follows the same owner/holder invariants as Book. Giving a
// present transfers custody only; the giver stays the owner.
type Present struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BoxColor  string             `bson:"boxColor" json:"box_color"`
	Content   string             `bson:"content" json:"content"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	HolderID  primitive.ObjectID `bson:"holderId" json:"holderId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
