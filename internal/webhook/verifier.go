// Package webhook verifies that inbound payment-processor callbacks were
// signed with the shared secret. Paystack signs the raw request body with
// HMAC-SHA512 and sends the lowercase hex digest in X-Paystack-Signature.
package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
)

const SignatureHeader = "X-Paystack-Signature"

var (
	// ErrMissingField: the caller sent an incomplete request. A client
	// error, not a verification failure.
	ErrMissingField = errors.New("payload and signature are required")
	// ErrSecretNotConfigured: the deployment has no shared secret. Must be
	// surfaced to operators, never treated as "invalid signature".
	ErrSecretNotConfigured = errors.New("paystack secret key not configured")
)

// Verify reports whether signature is the HMAC-SHA512 hex digest of payload
// under secret. Pure function, no side effects. The comparison is
// constant-time; a plain string compare here would leak digest prefixes
// through response timing.
func Verify(payload []byte, signature, secret string) (bool, error) {
	if len(payload) == 0 || signature == "" {
		return false, ErrMissingField
	}
	if secret == "" {
		return false, ErrSecretNotConfigured
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Sign computes the signature Verify expects. Used by tests and the local
// event simulator.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
