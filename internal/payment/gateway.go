// Package payment creates gateway orders and checks payment signatures.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Order is a gateway-side payment order. Amount is in minor units (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway is the payment provider boundary.
type Gateway interface {
	// KeyID is the public key the browser checkout widget needs.
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Config selects and configures a gateway.
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// New returns the HTTP gateway when credentials are configured and the sandbox otherwise.
func New(cfg Config) Gateway {
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		return NewRazorpay(cfg)
	}
	return NewSandbox(cfg.KeySecret)
}

// Sign computes the hex HMAC-SHA256 of "orderID|paymentID".
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
