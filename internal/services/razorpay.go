package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// RazorpayOrder is the slice of the provider's order response we care about.
type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// RazorpayService creates payment orders against the Razorpay Orders API.
// Credentials and base URL are injected; the key secret is shared with the
// SignatureVerifier.
type RazorpayService struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayService(keyID, keySecret, baseURL string) *RazorpayService {
	return &RazorpayService{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateOrder asks Razorpay to open an order for the given amount in minor
// units. Transient failures are retried a few times with a short linear
// backoff; anything left after that surfaces as a provider error and no local
// state is created by the caller.
func (s *RazorpayService) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	reqBody := razorpayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal order request: %v", ErrProvider, err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * 250 * time.Millisecond):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/orders", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create order request: %v", ErrProvider, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(s.keyID, s.keySecret)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("Razorpay order request failed (attempt %d): %v", attempt, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			log.Printf("Razorpay order request failed with status %d (attempt %d)", resp.StatusCode, attempt)
			// 4xx responses will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
			continue
		}

		var order RazorpayOrder
		if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: failed to decode order response: %v", ErrProvider, err)
		}
		resp.Body.Close()

		if order.ID == "" {
			return nil, fmt.Errorf("%w: no order id in response", ErrProvider)
		}

		log.Printf("Razorpay order created: ID=%s, Amount=%d, Receipt=%s", order.ID, order.Amount, order.Receipt)
		return &order, nil
	}

	return nil, fmt.Errorf("%w: order creation failed after retries: %v", ErrProvider, lastErr)
}
