// Package payment defines the gateway used to settle invoices with an
// external payment provider.
package payment

import (
	"context"

	"github.com/hivx/My-store/internal/domain"
)

// ChargeInput holds the parameters for a single charge attempt.
type ChargeInput struct {
	OrderID     string
	Amount      int64
	Currency    string
	Description string
	// ReturnContext is opaque correlation data echoed back by the gateway
	// so the settlement can be matched to the originating attempt.
	ReturnContext map[string]string
}

// Gateway defines the interface for payment gateway integrations. A Failed
// or Cancelled outcome is a normal settlement result, returned without error;
// an error means the gateway could not be reached and the outcome is unknown.
type Gateway interface {
	// Name returns the gateway name (e.g., "sandbox", "vnpay").
	Name() string

	// Charge submits a charge and waits for the gateway's settlement
	// response.
	Charge(ctx context.Context, input *ChargeInput) (*domain.PaymentResult, error)
}
