// Package sandbox provides a deterministic payment gateway for development
// and testing. The outcome is decided by the charge amount's last two
// digits, so test scenarios can force any settlement result.
package sandbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/payment"
)

// Amount suffixes that force a non-success outcome.
const (
	suffixFailed    = 99
	suffixCancelled = 98
)

// Gateway is a sandbox payment gateway with deterministic outcomes.
type Gateway struct {
	// now is injectable for tests.
	now func() time.Time
}

// NewGateway creates a sandbox payment gateway.
func NewGateway() *Gateway {
	return &Gateway{now: time.Now}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "sandbox"
}

// Charge settles a charge immediately. An amount ending in 99 fails, an
// amount ending in 98 is cancelled, anything else succeeds.
func (g *Gateway) Charge(_ context.Context, input *payment.ChargeInput) (*domain.PaymentResult, error) {
	outcome := domain.PaymentOutcomeSucceeded
	message := ""

	switch input.Amount % 100 {
	case suffixFailed:
		outcome = domain.PaymentOutcomeFailed
		message = "card declined"
	case suffixCancelled:
		outcome = domain.PaymentOutcomeCancelled
		message = "cancelled by customer"
	}

	return &domain.PaymentResult{
		TransactionID: "sandbox_" + uuid.New().String(),
		OrderID:       input.OrderID,
		Outcome:       outcome,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Message:       message,
		ProcessedAt:   g.now(),
	}, nil
}
