package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ValidRoles = []string{RoleUser, RoleAdmin}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"` // unique, doubles as the login username
	Password  string             `bson:"password" json:"-"`  // bcrypt hash
	Role      string             `bson:"role" json:"role"`   // user or admin
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
