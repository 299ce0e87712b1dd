package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSignature(t *testing.T, secret, orderID, paymentID string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_AcceptsProviderSignature(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("rzp_test_secret")
	sig := sampleSignature(t, "rzp_test_secret", "order_ABC123", "pay_XYZ789")
	assert.True(t, v.Verify("order_ABC123", "pay_XYZ789", sig))
}

func TestVerify_RejectsTamperedInputs(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("rzp_test_secret")
	sig := sampleSignature(t, "rzp_test_secret", "order_ABC123", "pay_XYZ789")

	cases := []struct {
		name                        string
		orderID, paymentID, payload string
	}{
		{"corrupted signature", "order_ABC123", "pay_XYZ789", "0" + sig[1:]},
		{"truncated signature", "order_ABC123", "pay_XYZ789", sig[:32]},
		{"empty signature", "order_ABC123", "pay_XYZ789", ""},
		{"different payment", "order_ABC123", "pay_OTHER", sig},
		{"different order", "order_OTHER", "pay_XYZ789", sig},
		{"swapped references", "pay_XYZ789", "order_ABC123", sig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, v.Verify(tc.orderID, tc.paymentID, tc.payload))
		})
	}
}

func TestVerify_RejectsSignatureFromDifferentSecret(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("rzp_live_secret")
	sig := sampleSignature(t, "rzp_test_secret", "order_ABC123", "pay_XYZ789")
	assert.False(t, v.Verify("order_ABC123", "pay_XYZ789", sig))
}

func TestExpected_IsHexSHA256(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("secret")
	got := v.Expected("order_1", "pay_1")
	require.Len(t, got, 64)
	_, err := hex.DecodeString(got)
	require.NoError(t, err)
}
