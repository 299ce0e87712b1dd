package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

type SevaHandler struct {
	service *services.SevaService
}

func NewSevaHandler(service *services.SevaService) *SevaHandler {
	return &SevaHandler{service: service}
}

func (h *SevaHandler) GetSevas(w http.ResponseWriter, r *http.Request) {
	sevas, err := h.service.SevaList(r.Context())
	if err != nil {
		log.Printf("Failed to fetch seva opportunities: %v", err)
		http.Error(w, `{"error":"Failed to fetch seva opportunities"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sevas); err != nil {
		log.Printf("Failed to encode seva opportunities: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}

func (h *SevaHandler) GetSeva(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sevaID := vars["sevaID"]
	if sevaID == "" {
		http.Error(w, `{"error":"Seva opportunity ID is required"}`, http.StatusBadRequest)
		return
	}

	seva, err := h.service.GetSevaByID(r.Context(), sevaID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, `{"error":"seva opportunity not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidInput):
			http.Error(w, `{"error":"Invalid seva opportunity ID"}`, http.StatusBadRequest)
		default:
			log.Printf("Failed to fetch seva opportunity %s: %v", sevaID, err)
			http.Error(w, `{"error":"Failed to fetch seva opportunity"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(seva); err != nil {
		log.Printf("Failed to encode seva opportunity: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}
