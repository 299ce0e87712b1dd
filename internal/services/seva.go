package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
)

type SevaService struct {
	collection *mongo.Collection
}

func NewSevaService(db *mongo.Database) *SevaService {
	return &SevaService{collection: db.Collection("seva_opportunities")}
}

func (s *SevaService) SevaList(ctx context.Context) ([]models.SevaOpportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		log.Printf("Failed to fetch seva opportunities: %v", err)
		return nil, fmt.Errorf("failed to fetch seva opportunities: %v", err)
	}

	var sevas []models.SevaOpportunity
	defer cur.Close(ctx)
	if err := cur.All(ctx, &sevas); err != nil {
		log.Printf("Failed to decode seva opportunities: %v", err)
		return nil, fmt.Errorf("failed to decode seva opportunities: %v", err)
	}
	return sevas, nil
}

func (s *SevaService) GetSevaByID(ctx context.Context, sevaID string) (*models.SevaOpportunity, error) {
	objID, err := primitive.ObjectIDFromHex(sevaID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seva_opportunity_id format", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var seva models.SevaOpportunity
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&seva); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Printf("Failed to fetch seva opportunity %s: %v", sevaID, err)
		return nil, fmt.Errorf("failed to fetch seva opportunity: %v", err)
	}
	return &seva, nil
}

// AddToObtained folds a purchased quantity into obtained_quantity with a
// single server-side $inc, same contract as CampaignService.AddToRaised.
// obtained_quantity is not capped at total_quantity; over-subscription is
// surfaced to operators rather than rejected here. Returns the new
// obtained_quantity.
func (s *SevaService) AddToObtained(ctx context.Context, sevaID string, quantity int64) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(sevaID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid seva_opportunity_id format", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var updated models.SevaOpportunity
	err = s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$inc": bson.M{"obtained_quantity": quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		log.Printf("Failed to increment obtained_quantity for seva %s: %v", sevaID, err)
		return 0, fmt.Errorf("failed to update seva opportunity: %v", err)
	}

	if updated.ObtainedQuantity > updated.TotalQuantity {
		log.Printf("Seva %s is over-subscribed: obtained=%d total=%d", sevaID, updated.ObtainedQuantity, updated.TotalQuantity)
	}
	return updated.ObtainedQuantity, nil
}
