package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

// DonationPipeline is what the donation endpoints need from the settlement
// service.
type DonationPipeline interface {
	CreateIntent(ctx context.Context, req services.CreateIntentRequest) (*models.PaymentIntent, error)
	VerifyAndSettle(ctx context.Context, req services.SettleRequest) (*models.DonationRecord, error)
}

type DonationHandler struct {
	service DonationPipeline
}

func NewDonationHandler(service DonationPipeline) *DonationHandler {
	return &DonationHandler{service: service}
}

// CreateDonation opens a provider order for the requested amount and returns
// its id for the client-side checkout.
func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount            int64  `json:"amount"`
		CampaignID        string `json:"campaignId"`
		SevaOpportunityID string `json:"sevaOpportunityId"`
		Quantity          int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), services.CreateIntentRequest{
		Amount:            req.Amount,
		CampaignID:        req.CampaignID,
		SevaOpportunityID: req.SevaOpportunityID,
		Quantity:          req.Quantity,
	})
	if err != nil {
		log.Printf("Failed to create donation order: %v", err)
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			http.Error(w, `{"error":"Invalid donation request"}`, http.StatusBadRequest)
		case errors.Is(err, services.ErrProvider):
			http.Error(w, `{"error":"Failed to create order"}`, http.StatusBadGateway)
		default:
			http.Error(w, `{"error":"Failed to create order, please try again"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"orderId": intent.ID}); err != nil {
		log.Printf("Failed to encode order response: %v", err)
	}
}

// VerifyDonation runs the settlement pipeline for a completion payload.
// Replays of an already-settled order succeed without changing anything.
func (h *DonationHandler) VerifyDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID           string `json:"razorpay_order_id"`
		PaymentID         string `json:"razorpay_payment_id"`
		Signature         string `json:"razorpay_signature"`
		Amount            int64  `json:"amount"`
		CampaignID        string `json:"campaignId"`
		SevaOpportunityID string `json:"sevaOpportunityId"`
		Quantity          int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	_, err := h.service.VerifyAndSettle(r.Context(), services.SettleRequest{
		OrderID:           req.OrderID,
		PaymentID:         req.PaymentID,
		Signature:         req.Signature,
		Amount:            req.Amount,
		CampaignID:        req.CampaignID,
		SevaOpportunityID: req.SevaOpportunityID,
		Quantity:          req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			http.Error(w, `{"error":"Invalid donation payload"}`, http.StatusBadRequest)
		case errors.Is(err, services.ErrInvalidSignature):
			http.Error(w, `{"error":"Invalid signature"}`, http.StatusBadRequest)
		default:
			// Persistence failures are retriable by the client; keep the
			// message generic.
			log.Printf("Failed to settle donation for order %s: %v", req.OrderID, err)
			http.Error(w, `{"error":"Failed to record donation, please try again"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Donation verified and recorded",
	}); err != nil {
		log.Printf("Failed to encode verify response: %v", err)
	}
}
