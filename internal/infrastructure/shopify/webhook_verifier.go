package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// WebhookVerifier verifies webhook payloads against the shared secret using
// the HMAC-SHA256 signature Shopify sends in X-Shopify-Hmac-SHA256.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a new webhook verifier
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify checks the payload signature. It returns an error on mismatch so
// callers can reject the delivery before any side effect.
func (v *WebhookVerifier) Verify(payload []byte, hmacHeader string) error {
	if hmacHeader == "" {
		return fmt.Errorf("missing hmac header")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(hmacHeader)) {
		return fmt.Errorf("hmac signature mismatch")
	}

	return nil
}
