package services

import "errors"

// Sentinel errors for the settlement pipeline. Handlers map these to HTTP
// statuses with errors.Is, so services wrap them with %w and never replace
// them with free-form strings.
var (
	// ErrInvalidInput covers malformed requests: non-positive amounts,
	// quantity without a seva opportunity, and so on. No state change.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSignature is an authenticity failure. It is permanent and is
	// raised before any persistence step runs.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNotFound is returned when a referenced campaign or seva opportunity
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProvider is a payment provider failure during order creation.
	ErrProvider = errors.New("payment provider error")

	// ErrPersistence is a ledger or aggregate write failure after retries.
	// Idempotency is preserved, so the client may safely resubmit.
	ErrPersistence = errors.New("persistence failure")
)
