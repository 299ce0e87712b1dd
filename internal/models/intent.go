package models

import "time"

const (
	IntentPending   = "pending"
	IntentCompleted = "completed"
	IntentFailed    = "failed"
)

// PaymentIntent is one Razorpay order we asked the provider to collect. The
// document id is the provider's order id, which is also the reference the
// client hands back on settlement. Intents are never deleted; they move to
// completed/failed only through the verify path.
type PaymentIntent struct {
	ID                string    `bson:"_id" json:"order_id"`
	Amount            int64     `bson:"amount" json:"amount"` // minor units
	Currency          string    `bson:"currency" json:"currency"`
	Receipt           string    `bson:"receipt" json:"receipt"`
	CampaignID        string    `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	SevaOpportunityID string    `bson:"seva_opportunity_id,omitempty" json:"seva_opportunity_id,omitempty"`
	Quantity          int64     `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Status            string    `bson:"status" json:"status"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}
