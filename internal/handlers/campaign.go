package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

type CampaignHandler struct {
	service *services.CampaignService
}

func NewCampaignHandler(service *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func (h *CampaignHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.CampaignList(r.Context())
	if err != nil {
		log.Printf("Failed to fetch campaigns: %v", err)
		http.Error(w, `{"error":"Failed to fetch campaigns"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(campaigns); err != nil {
		log.Printf("Failed to encode campaigns: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	campaignID := vars["campaignID"]
	if campaignID == "" {
		http.Error(w, `{"error":"Campaign ID is required"}`, http.StatusBadRequest)
		return
	}

	campaign, err := h.service.GetCampaignByID(r.Context(), campaignID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, `{"error":"campaign not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidInput):
			http.Error(w, `{"error":"Invalid campaign ID"}`, http.StatusBadRequest)
		default:
			log.Printf("Failed to fetch campaign %s: %v", campaignID, err)
			http.Error(w, `{"error":"Failed to fetch campaign"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(campaign); err != nil {
		log.Printf("Failed to encode campaign: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}
