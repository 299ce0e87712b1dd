package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier checks that a completion payload really came from
// Razorpay. The provider signs orderID|paymentID with the shared key secret;
// we recompute the HMAC and compare in constant time. The secret is injected
// at construction so it can be rotated and tested with fixtures.
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) SignatureVerifier {
	return SignatureVerifier{secret: []byte(secret)}
}

// Expected returns the hex HMAC-SHA256 the provider should have produced for
// the given order and payment references.
func (v SignatureVerifier) Expected(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the supplied signature matches. hmac.Equal does the
// comparison without leaking how many leading bytes matched.
func (v SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	expected := v.Expected(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
