package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/pkg/auth"
)

// User is an account of any role.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"          json:"_id"`
	Name         string             `bson:"name"                   json:"name"`
	Email        string             `bson:"email"                  json:"email"`
	Password     string             `bson:"password"               json:"-"` // bcrypt hash, never serialised
	Role         auth.Role          `bson:"role"                   json:"role"`
	BusinessName string             `bson:"businessName,omitempty" json:"businessName,omitempty"`
	Phone        string             `bson:"phone,omitempty"        json:"phone,omitempty"`
	Address      string             `bson:"address,omitempty"      json:"address,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"              json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"              json:"updatedAt"`
}

// Identity returns the token subject for u.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID.Hex(), Role: u.Role}
}
