package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

type stubPipeline struct {
	intent    *models.PaymentIntent
	record    *models.DonationRecord
	intentErr error
	settleErr error

	lastCreate services.CreateIntentRequest
	lastSettle services.SettleRequest
}

func (s *stubPipeline) CreateIntent(ctx context.Context, req services.CreateIntentRequest) (*models.PaymentIntent, error) {
	s.lastCreate = req
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return s.intent, nil
}

func (s *stubPipeline) VerifyAndSettle(ctx context.Context, req services.SettleRequest) (*models.DonationRecord, error) {
	s.lastSettle = req
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	return s.record, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestCreateDonation_ReturnsOrderID(t *testing.T) {
	t.Parallel()

	stub := &stubPipeline{intent: &models.PaymentIntent{ID: "order_123", Amount: 5000}}
	h := NewDonationHandler(stub)

	rr := postJSON(t, h.CreateDonation, `{"amount":5000,"campaignId":"c1"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"orderId":"order_123"}`, rr.Body.String())
	assert.Equal(t, int64(5000), stub.lastCreate.Amount)
	assert.Equal(t, "c1", stub.lastCreate.CampaignID)
}

func TestCreateDonation_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrInvalidInput, http.StatusBadRequest},
		{"provider", services.ErrProvider, http.StatusBadGateway},
		{"persistence", services.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewDonationHandler(&stubPipeline{intentErr: tc.err})
			rr := postJSON(t, h.CreateDonation, `{"amount":100}`)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestCreateDonation_RejectsMalformedBody(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&stubPipeline{})
	rr := postJSON(t, h.CreateDonation, `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyDonation_ReportsSuccess(t *testing.T) {
	t.Parallel()

	stub := &stubPipeline{record: &models.DonationRecord{ID: "d1", Status: models.DonationCompleted}}
	h := NewDonationHandler(stub)

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig","amount":5000,"campaignId":"c1"}`
	rr := postJSON(t, h.VerifyDonation, body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Donation verified and recorded"}`, rr.Body.String())
	assert.Equal(t, "order_1", stub.lastSettle.OrderID)
	assert.Equal(t, "pay_1", stub.lastSettle.PaymentID)
}

func TestVerifyDonation_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		want     int
		wantBody string
	}{
		{"authenticity", services.ErrInvalidSignature, http.StatusBadRequest, "Invalid signature"},
		{"validation", services.ErrInvalidInput, http.StatusBadRequest, "Invalid donation payload"},
		{"persistence", services.ErrPersistence, http.StatusInternalServerError, "please try again"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewDonationHandler(&stubPipeline{settleErr: tc.err})
			rr := postJSON(t, h.VerifyDonation, `{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s","amount":1}`)
			assert.Equal(t, tc.want, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestVerifyDonation_PersistenceErrorHidesDetail(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&stubPipeline{settleErr: services.ErrPersistence})
	rr := postJSON(t, h.VerifyDonation, `{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s","amount":1}`)
	assert.NotContains(t, rr.Body.String(), "persistence", "internal detail must not leak")
}
