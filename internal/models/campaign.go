package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign represents a fundraising campaign document in the MongoDB database.
// RaisedAmount is in minor currency units (paise) and is only ever mutated via
// an atomic $inc by the settlement pipeline.
type Campaign struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	TargetAmount int64              `bson:"target_amount" json:"target_amount"`
	RaisedAmount int64              `bson:"raised_amount" json:"raised_amount"`
	PeopleHelped int64              `bson:"people_helped" json:"people_helped"`
	Status       string             `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
