package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/sevasangam/seva-gobackend.git/internal/models"
)

// Donations are collected in INR; amounts everywhere are paise.
const donationCurrency = "INR"

// OrderCreator is the slice of the payment provider the pipeline needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error)
}

// IntentRecorder persists payment intents.
type IntentRecorder interface {
	Create(ctx context.Context, intent *models.PaymentIntent) error
	MarkCompleted(ctx context.Context, orderID string) error
}

// DonationLedger records settled donations exactly once per order reference
// and hands out the apply token for the aggregate step.
type DonationLedger interface {
	Record(ctx context.Context, rec *models.DonationRecord) (*models.DonationRecord, bool, error)
	ClaimApply(ctx context.Context, id string) (bool, error)
	ReleaseApply(ctx context.Context, id string) error
}

// CampaignAggregates applies donation amounts to campaign totals.
type CampaignAggregates interface {
	AddToRaised(ctx context.Context, campaignID string, delta int64) (int64, error)
}

// SevaAggregates applies purchased quantities to seva opportunity totals.
type SevaAggregates interface {
	AddToObtained(ctx context.Context, sevaID string, quantity int64) (int64, error)
}

// ChangePublisher fans out aggregate changes to connected viewers.
type ChangePublisher interface {
	Publish(evt Event)
}

// DonationService runs the settlement pipeline: issue an order, verify a
// completion, record it once, apply its delta atomically, notify viewers.
type DonationService struct {
	orders    OrderCreator
	intents   IntentRecorder
	ledger    DonationLedger
	campaigns CampaignAggregates
	sevas     SevaAggregates
	verifier  SignatureVerifier
	notifier  ChangePublisher

	// newApplyBackOff builds the retry policy for the aggregate increment.
	newApplyBackOff func() backoff.BackOff
}

func NewDonationService(
	orders OrderCreator,
	intents IntentRecorder,
	ledger DonationLedger,
	campaigns CampaignAggregates,
	sevas SevaAggregates,
	verifier SignatureVerifier,
	notifier ChangePublisher,
) *DonationService {
	return &DonationService{
		orders:          orders,
		intents:         intents,
		ledger:          ledger,
		campaigns:       campaigns,
		sevas:           sevas,
		verifier:        verifier,
		notifier:        notifier,
		newApplyBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// CreateIntentRequest is the client's ask: an amount and at most one target.
type CreateIntentRequest struct {
	Amount            int64
	CampaignID        string
	SevaOpportunityID string
	Quantity          int64
}

func (r CreateIntentRequest) validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if r.CampaignID != "" && r.SevaOpportunityID != "" {
		return fmt.Errorf("%w: campaign and seva opportunity targets are mutually exclusive", ErrInvalidInput)
	}
	if r.SevaOpportunityID != "" && r.Quantity <= 0 {
		return fmt.Errorf("%w: seva donations require a positive quantity", ErrInvalidInput)
	}
	if r.SevaOpportunityID == "" && r.Quantity != 0 {
		return fmt.Errorf("%w: quantity is only valid with a seva opportunity", ErrInvalidInput)
	}
	return nil
}

// CreateIntent opens an order with the provider and persists the pending
// intent. The provider call goes first: if it fails nothing is stored, and if
// the local insert fails the unreferenced provider order simply expires.
func (s *DonationService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*models.PaymentIntent, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	receipt := "donation_" + uuid.NewString()
	notes := map[string]string{}
	if req.CampaignID != "" {
		notes["campaignId"] = req.CampaignID
	}
	if req.SevaOpportunityID != "" {
		notes["sevaOpportunityId"] = req.SevaOpportunityID
		notes["quantity"] = fmt.Sprintf("%d", req.Quantity)
	}

	order, err := s.orders.CreateOrder(ctx, req.Amount, donationCurrency, receipt, notes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	intent := &models.PaymentIntent{
		ID:                order.ID,
		Amount:            req.Amount,
		Currency:          donationCurrency,
		Receipt:           receipt,
		CampaignID:        req.CampaignID,
		SevaOpportunityID: req.SevaOpportunityID,
		Quantity:          req.Quantity,
		Status:            models.IntentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("Payment intent created: order=%s amount=%d campaign=%q seva=%q", intent.ID, intent.Amount, intent.CampaignID, intent.SevaOpportunityID)
	return intent, nil
}

// SettleRequest is the completion payload the client (or the provider
// callback) submits after paying out-of-band.
type SettleRequest struct {
	OrderID           string
	PaymentID         string
	Signature         string
	Amount            int64
	CampaignID        string
	SevaOpportunityID string
	Quantity          int64
}

func (r SettleRequest) validate() error {
	if r.OrderID == "" || r.PaymentID == "" || r.Signature == "" {
		return fmt.Errorf("%w: order id, payment id and signature are required", ErrInvalidInput)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if r.SevaOpportunityID != "" && r.Quantity <= 0 {
		return fmt.Errorf("%w: seva donations require a positive quantity", ErrInvalidInput)
	}
	return nil
}

// VerifyAndSettle is the whole pipeline behind POST /api/donation/verify.
// The signature gate runs before any persistence. Replaying an
// already-settled order returns the existing record and changes nothing.
func (s *DonationService) VerifyAndSettle(ctx context.Context, req SettleRequest) (*models.DonationRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		log.Printf("Rejected settlement for order %s: signature mismatch", req.OrderID)
		return nil, ErrInvalidSignature
	}

	rec := &models.DonationRecord{
		ID:                uuid.NewString(),
		OrderID:           req.OrderID,
		PaymentID:         req.PaymentID,
		Amount:            req.Amount,
		CampaignID:        req.CampaignID,
		SevaOpportunityID: req.SevaOpportunityID,
		Quantity:          req.Quantity,
		Status:            models.DonationCompleted,
		VerifiedAt:        time.Now(),
	}
	// A general donation has no aggregate to apply; record it as done so
	// replays and the reconciler leave it alone.
	if !rec.HasTarget() {
		rec.AggregateApplied = true
	}

	stored, inserted, err := s.ledger.Record(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if inserted {
		// Best effort; the ledger row is the source of truth for settlement.
		if err := s.intents.MarkCompleted(ctx, req.OrderID); err != nil {
			log.Printf("Could not mark intent %s completed: %v", req.OrderID, err)
		}
	} else if stored.AggregateApplied {
		log.Printf("Replay of settled order %s, nothing to do", req.OrderID)
		return stored, nil
	}

	if err := s.ApplyRecorded(ctx, stored); err != nil {
		return nil, err
	}

	s.notifier.Publish(Event{Topic: TopicDonations, EntityID: stored.ID, Value: stored.Amount})
	return stored, nil
}

// ApplyRecorded drives the aggregate increment for a recorded donation. It is
// safe to call any number of times for the same record: the ledger claim
// guarantees the delta lands at most once. Also used by the reconcile tool
// for donations whose increment failed after the ledger commit.
func (s *DonationService) ApplyRecorded(ctx context.Context, rec *models.DonationRecord) error {
	if !rec.HasTarget() {
		return nil
	}

	claimed, err := s.ledger.ClaimApply(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !claimed {
		// Someone else holds the token; their settlement will finish the job.
		log.Printf("Donation %s already claimed for apply", rec.ID)
		return nil
	}

	if err := s.applyAggregate(ctx, rec); err != nil {
		if rerr := s.ledger.ReleaseApply(ctx, rec.ID); rerr != nil {
			log.Printf("Could not release donation %s after apply failure: %v", rec.ID, rerr)
		}
		log.Printf("Aggregate update failed for donation %s (order %s): %v", rec.ID, rec.OrderID, err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *DonationService) applyAggregate(ctx context.Context, rec *models.DonationRecord) error {
	operation := func() (int64, error) {
		switch {
		case rec.CampaignID != "":
			return s.campaigns.AddToRaised(ctx, rec.CampaignID, rec.Amount)
		default:
			return s.sevas.AddToObtained(ctx, rec.SevaOpportunityID, rec.Quantity)
		}
	}

	newValue, err := backoff.Retry(ctx,
		func() (int64, error) {
			v, err := operation()
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				return 0, backoff.Permanent(err)
			}
			return v, err
		},
		backoff.WithBackOff(s.newApplyBackOff()),
		backoff.WithMaxTries(5),
		backoff.WithMaxElapsedTime(30*time.Second),
	)
	if err != nil {
		// A missing or malformed target cannot be applied now or later; keep
		// the record (attribution is in the ledger) and move on.
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			log.Printf("Donation %s references missing target (campaign=%q seva=%q), recorded without aggregate", rec.ID, rec.CampaignID, rec.SevaOpportunityID)
			return nil
		}
		return err
	}

	if rec.CampaignID != "" {
		s.notifier.Publish(Event{Topic: TopicCampaigns, EntityID: rec.CampaignID, Value: newValue})
	} else {
		s.notifier.Publish(Event{Topic: TopicSevas, EntityID: rec.SevaOpportunityID, Value: newValue})
	}
	return nil
}
