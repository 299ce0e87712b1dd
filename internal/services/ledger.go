package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
)

// LedgerService owns the donations collection. One record per settled intent,
// enforced by a unique index on razorpay_order_id, and immutable apart from
// the aggregate_applied flag the settlement pipeline uses as its apply token.
type LedgerService struct {
	collection *mongo.Collection
}

func NewLedgerService(db *mongo.Database) *LedgerService {
	return &LedgerService{collection: db.Collection("donations")}
}

// EnsureIndexes creates the uniqueness constraint the idempotency contract
// depends on. Call at startup before serving traffic.
func (s *LedgerService) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.M{"razorpay_order_id": 1},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "verified_at", Value: -1}}},
		{Keys: bson.D{{Key: "aggregate_applied", Value: 1}, {Key: "verified_at", Value: 1}}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("Failed to create donation indexes: %v", err)
		return fmt.Errorf("failed to create donation indexes: %v", err)
	}
	return nil
}

// Record inserts the donation. If a record for the same order already exists
// the existing one is returned with inserted=false; the duplicate is not an
// error, it is the idempotency contract doing its job.
func (s *LedgerService) Record(ctx context.Context, rec *models.DonationRecord) (*models.DonationRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var existing models.DonationRecord
			if ferr := s.collection.FindOne(ctx, bson.M{"razorpay_order_id": rec.OrderID}).Decode(&existing); ferr != nil {
				log.Printf("Failed to fetch existing donation for order %s: %v", rec.OrderID, ferr)
				return nil, false, fmt.Errorf("failed to fetch existing donation: %v", ferr)
			}
			log.Printf("Donation already recorded for order %s (id=%s)", rec.OrderID, existing.ID)
			return &existing, false, nil
		}
		log.Printf("Failed to record donation for order %s: %v", rec.OrderID, err)
		return nil, false, fmt.Errorf("failed to record donation: %v", err)
	}
	return rec, true, nil
}

// ClaimApply marks the record as aggregate-applied, but only if nobody else
// has. The conditional update is what prevents two concurrent replays of the
// same order from double-applying the delta.
func (s *LedgerService) ClaimApply(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "aggregate_applied": false},
		bson.M{"$set": bson.M{"aggregate_applied": true}},
	)
	if err != nil {
		log.Printf("Failed to claim donation %s for apply: %v", id, err)
		return false, fmt.Errorf("failed to claim donation: %v", err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseApply undoes a claim after a failed increment so the record is
// visible to retries and the reconciler again.
func (s *LedgerService) ReleaseApply(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"aggregate_applied": false}},
	)
	if err != nil {
		log.Printf("Failed to release donation %s after apply failure: %v", id, err)
		return fmt.Errorf("failed to release donation: %v", err)
	}
	return nil
}

// ListDonations returns donation records newest-first, optionally filtered by
// status. Used by the admin view.
func (s *LedgerService) ListDonations(ctx context.Context, status string, limit int64) ([]models.DonationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"verified_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		log.Printf("Failed to fetch donations: %v", err)
		return nil, fmt.Errorf("failed to fetch donations: %v", err)
	}
	defer cur.Close(ctx)

	var donations []models.DonationRecord
	if err := cur.All(ctx, &donations); err != nil {
		log.Printf("Failed to decode donations: %v", err)
		return nil, fmt.Errorf("failed to decode donations: %v", err)
	}
	return donations, nil
}

// FindUnapplied returns targeted donations whose aggregate increment has not
// landed and that are older than the grace period. The grace period keeps the
// reconciler from racing settlements that are still in flight.
func (s *LedgerService) FindUnapplied(ctx context.Context, olderThan time.Time) ([]models.DonationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{
		"aggregate_applied": false,
		"verified_at":       bson.M{"$lte": olderThan},
	}
	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"verified_at": 1}))
	if err != nil {
		log.Printf("Failed to fetch unapplied donations: %v", err)
		return nil, fmt.Errorf("failed to fetch unapplied donations: %v", err)
	}
	defer cur.Close(ctx)

	var donations []models.DonationRecord
	if err := cur.All(ctx, &donations); err != nil {
		log.Printf("Failed to decode unapplied donations: %v", err)
		return nil, fmt.Errorf("failed to decode unapplied donations: %v", err)
	}
	return donations, nil
}

// SumByCampaign totals completed donation amounts per campaign straight from
// the ledger. The reconciler compares this against raised_amount to detect
// drift.
func (s *LedgerService) SumByCampaign(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":      models.DonationCompleted,
			"campaign_id": bson.M{"$exists": true, "$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$campaign_id",
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cur, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("Failed to aggregate donation sums: %v", err)
		return nil, fmt.Errorf("failed to aggregate donation sums: %v", err)
	}
	defer cur.Close(ctx)

	sums := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode donation sum: %v", err)
		}
		sums[row.ID] = row.Total
	}
	return sums, cur.Err()
}
