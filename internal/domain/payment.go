package domain

import "time"

// Payment outcome constants. Failed and Cancelled are normal terminal
// settlement outcomes, not errors.
const (
	PaymentOutcomeSucceeded = "succeeded"
	PaymentOutcomeFailed    = "failed"
	PaymentOutcomeCancelled = "cancelled"
)

// PaymentResult is the gateway's settlement response for a single charge.
// Each result is attached to exactly one invoice.
type PaymentResult struct {
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id"`
	Outcome       string    `json:"outcome"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Message       string    `json:"message,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// IsValidOutcome checks if an outcome string is one the gateway may return.
func IsValidOutcome(outcome string) bool {
	switch outcome {
	case PaymentOutcomeSucceeded, PaymentOutcomeFailed, PaymentOutcomeCancelled:
		return true
	}
	return false
}
