package payment

import (
	"context"
	"fmt"
)

const (
	sandboxKeyID  = "rzp_test_sandbox"
	sandboxSecret = "sandbox_secret"
)

// Sandbox issues local order ids and checks signatures against a fixed secret, for
// development and tests without gateway credentials.
type Sandbox struct {
	secret string
}

func NewSandbox(secret string) *Sandbox {
	if secret == "" {
		secret = sandboxSecret
	}
	return &Sandbox{secret: secret}
}

func (s *Sandbox) KeyID() string {
	return sandboxKeyID
}

func (s *Sandbox) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	suffix, err := randomHex(7)
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:       "order_sbx_" + suffix,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (s *Sandbox) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(s.secret, orderID, paymentID, signature)
}

// Sign produces the signature a real checkout widget would return for this sandbox.
func (s *Sandbox) Sign(orderID, paymentID string) string {
	return Sign(s.secret, orderID, paymentID)
}
