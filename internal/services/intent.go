package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
)

// IntentService persists payment intents. Intents are append-only apart from
// the pending -> completed/failed status transition driven by the verify path.
type IntentService struct {
	collection *mongo.Collection
}

func NewIntentService(db *mongo.Database) *IntentService {
	return &IntentService{collection: db.Collection("payment_intents")}
}

func (s *IntentService) Create(ctx context.Context, intent *models.PaymentIntent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, intent); err != nil {
		log.Printf("Failed to save payment intent %s: %v", intent.ID, err)
		return fmt.Errorf("failed to save payment intent: %v", err)
	}
	return nil
}

// MarkCompleted flips a pending intent to completed. An intent that is
// already completed is left alone, which keeps replays harmless.
func (s *IntentService) MarkCompleted(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": orderID, "status": models.IntentPending},
		bson.M{"$set": bson.M{"status": models.IntentCompleted, "updated_at": time.Now()}},
	)
	if err != nil {
		log.Printf("Failed to mark intent %s completed: %v", orderID, err)
		return fmt.Errorf("failed to update payment intent: %v", err)
	}
	return nil
}

func (s *IntentService) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var intent models.PaymentIntent
	if err := s.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&intent); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Printf("Failed to fetch intent %s: %v", orderID, err)
		return nil, fmt.Errorf("failed to fetch payment intent: %v", err)
	}
	return &intent, nil
}
