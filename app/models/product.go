package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue entry owned by one wholesaler.
type Product struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"      json:"_id"`
	Name       string             `bson:"name"               json:"name"`
	Price      float64            `bson:"price"              json:"price"`
	Category   string             `bson:"category,omitempty" json:"category,omitempty"`
	Image      string             `bson:"image,omitempty"    json:"image,omitempty"`
	Wholesaler primitive.ObjectID `bson:"wholesaler"         json:"wholesaler"`
	CreatedAt  time.Time          `bson:"createdAt"          json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"          json:"updatedAt"`
}
