package handlers

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
)

// DonationLister is the read side of the ledger the admin view needs.
type DonationLister interface {
	ListDonations(ctx context.Context, status string, limit int64) ([]models.DonationRecord, error)
}

type AdminHandler struct {
	password  string
	jwtSecret []byte
	ledger    DonationLister
}

func NewAdminHandler(password, jwtSecret string, ledger DonationLister) *AdminHandler {
	return &AdminHandler{
		password:  password,
		jwtSecret: []byte(jwtSecret),
		ledger:    ledger,
	}
}

// Login checks the configured admin password and issues a short-lived token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if h.password == "" || !hmac.Equal([]byte(req.Password), []byte(h.password)) {
		http.Error(w, `{"error":"Invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		log.Printf("Failed to sign admin token: %v", err)
		http.Error(w, `{"error":"Failed to issue token"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"token": signed}); err != nil {
		log.Printf("Failed to encode login response: %v", err)
	}
}

func (h *AdminHandler) authorize(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("authorization header required")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// ListDonations returns ledger records newest-first for the admin dashboard.
func (h *AdminHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != models.DonationCompleted {
		http.Error(w, `{"error":"Invalid status filter"}`, http.StatusBadRequest)
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, `{"error":"Invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	donations, err := h.ledger.ListDonations(r.Context(), status, limit)
	if err != nil {
		log.Printf("Failed to fetch donations: %v", err)
		http.Error(w, `{"error":"Failed to fetch donations"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(donations); err != nil {
		log.Printf("Failed to encode donations: %v", err)
		http.Error(w, `{"error":"Failed to encode response"}`, http.StatusInternalServerError)
	}
}
