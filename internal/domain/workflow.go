package domain

import "time"

// Workflow state constants. CartReview is initial; PaymentSucceeded,
// PaymentFailed, and PaymentCancelled are terminal for a given order attempt.
const (
	StateCartReview       = "cart_review"
	StateReconciled       = "reconciled"
	StateOrderCreated     = "order_created"
	StateInvoiceReady     = "invoice_ready"
	StatePaymentPending   = "payment_pending"
	StatePaymentSucceeded = "payment_succeeded"
	StatePaymentFailed    = "payment_failed"
	StatePaymentCancelled = "payment_cancelled"
)

// Workflow is one order-placement attempt: a handle over the cart, the order
// and invoice it produces, and the current state of the attempt.
type Workflow struct {
	ID                string        `json:"id"`
	SessionID         string        `json:"session_id"`
	State             string        `json:"state"`
	CartID            string        `json:"cart_id"`
	OrderID           string        `json:"order_id,omitempty"`
	InvoiceID         string        `json:"invoice_id,omitempty"`
	Shipping          *ShippingInfo `json:"shipping,omitempty"`
	ShippingConfirmed bool          `json:"shipping_confirmed"`
	Message           string        `json:"message,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// WorkflowTransitions defines the valid state transitions. Reconciled may
// loop back to CartReview when reconciliation found unavailable lines, and
// every non-terminal state may be cancelled into PaymentCancelled.
func WorkflowTransitions() map[string][]string {
	return map[string][]string{
		StateCartReview:       {StateReconciled, StatePaymentCancelled},
		StateReconciled:       {StateCartReview, StateOrderCreated, StatePaymentCancelled},
		StateOrderCreated:     {StateInvoiceReady, StatePaymentCancelled},
		StateInvoiceReady:     {StatePaymentPending, StatePaymentCancelled},
		StatePaymentPending:   {StatePaymentSucceeded, StatePaymentFailed, StatePaymentCancelled},
		StatePaymentSucceeded: {},
		StatePaymentFailed:    {},
		StatePaymentCancelled: {},
	}
}

// CanTransitionTo checks if the workflow can move to the target state.
func (w *Workflow) CanTransitionTo(target string) bool {
	allowed, ok := WorkflowTransitions()[w.State]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the workflow has reached a terminal state.
func (w *Workflow) IsTerminal() bool {
	switch w.State {
	case StatePaymentSucceeded, StatePaymentFailed, StatePaymentCancelled:
		return true
	}
	return false
}
