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

type CampaignService struct {
	collection *mongo.Collection
}

func NewCampaignService(db *mongo.Database) *CampaignService {
	return &CampaignService{collection: db.Collection("campaigns")}
}

func (s *CampaignService) CampaignList(ctx context.Context) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		log.Printf("Failed to fetch campaigns: %v", err)
		return nil, fmt.Errorf("failed to fetch campaigns: %v", err)
	}

	var campaigns []models.Campaign
	defer cur.Close(ctx)
	if err := cur.All(ctx, &campaigns); err != nil {
		log.Printf("Failed to decode campaigns: %v", err)
		return nil, fmt.Errorf("failed to decode campaigns: %v", err)
	}
	return campaigns, nil
}

func (s *CampaignService) GetCampaignByID(ctx context.Context, campaignID string) (*models.Campaign, error) {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid campaign_id format", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var campaign models.Campaign
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&campaign); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Printf("Failed to fetch campaign %s: %v", campaignID, err)
		return nil, fmt.Errorf("failed to fetch campaign: %v", err)
	}
	return &campaign, nil
}

// AddToRaised folds delta into raised_amount with a single server-side $inc.
// Two settlements landing on the same campaign serialize inside MongoDB, so
// neither update is lost; there is deliberately no read-modify-write here.
// Returns the new raised_amount.
func (s *CampaignService) AddToRaised(ctx context.Context, campaignID string, delta int64) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid campaign_id format", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var updated models.Campaign
	err = s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$inc": bson.M{"raised_amount": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		log.Printf("Failed to increment raised_amount for campaign %s: %v", campaignID, err)
		return 0, fmt.Errorf("failed to update campaign: %v", err)
	}

	log.Printf("Campaign %s raised_amount incremented by %d to %d", campaignID, delta, updated.RaisedAmount)
	return updated.RaisedAmount, nil
}
