package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SevaOpportunity is a fixed-price, fixed-quantity service commitment that
// donors fund per unit. ObtainedQuantity is mutated only via atomic $inc.
// Nothing currently caps obtained_quantity at total_quantity.
type SevaOpportunity struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	UnitPrice        int64              `bson:"unit_price" json:"unit_price"`
	TotalQuantity    int64              `bson:"total_quantity" json:"total_quantity"`
	ObtainedQuantity int64              `bson:"obtained_quantity" json:"obtained_quantity"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
