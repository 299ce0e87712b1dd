package models

import "time"

// DonationCompleted is the only status a ledger record ever holds; failed or
// unverified completions never reach the ledger.
const DonationCompleted = "completed"

// DonationRecord is the immutable ledger entry for one settled intent. The
// razorpay_order_id carries a unique index, which is what makes settlement
// idempotent end to end. AggregateApplied tracks whether the donation's delta
// has been folded into its campaign/seva aggregate; a record can briefly be
// completed-but-unapplied if the increment fails after the ledger commit, and
// the reconcile tool picks those up.
type DonationRecord struct {
	ID                string    `bson:"_id" json:"id"`
	OrderID           string    `bson:"razorpay_order_id" json:"razorpay_order_id"`
	PaymentID         string    `bson:"razorpay_payment_id" json:"razorpay_payment_id"`
	Amount            int64     `bson:"amount" json:"amount"` // minor units
	CampaignID        string    `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	SevaOpportunityID string    `bson:"seva_opportunity_id,omitempty" json:"seva_opportunity_id,omitempty"`
	Quantity          int64     `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Status            string    `bson:"status" json:"status"` // always "completed"
	AggregateApplied  bool      `bson:"aggregate_applied" json:"aggregate_applied"`
	VerifiedAt        time.Time `bson:"verified_at" json:"verified_at"`
}

// HasTarget reports whether the donation is attributed to a campaign or seva
// opportunity. A general donation has no target and touches no aggregate.
func (d *DonationRecord) HasTarget() bool {
	return d.CampaignID != "" || d.SevaOpportunityID != ""
}
