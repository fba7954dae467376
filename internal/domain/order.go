package domain

import "time"

// Order status constants.
const (
	OrderStatusCreated         = "created"
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPaid            = "paid"
	OrderStatusCanceled        = "canceled"
)

// Order represents a persisted order. It is an immutable snapshot once
// created; only the status field transitions after creation.
type Order struct {
	ID             string        `json:"id"`
	CartID         string        `json:"cart_id"`
	SessionID      string        `json:"session_id"`
	Status         string        `json:"status"`
	Lines          []OrderLine   `json:"lines"`
	SubtotalAmount int64         `json:"subtotal_amount"`
	VATAmount      int64         `json:"vat_amount"`
	Amount         int64         `json:"amount"`
	ShippingFees   int64         `json:"shipping_fees"`
	Currency       string        `json:"currency"`
	Shipping       *ShippingInfo `json:"shipping,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// OrderLine is one product line frozen at order time.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusCreated,
		OrderStatusAwaitingPayment,
		OrderStatusPaid,
		OrderStatusCanceled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid. A failed
// payment leaves the order in awaiting_payment so a later attempt can retry
// or cancel.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusCreated:         {OrderStatusAwaitingPayment, OrderStatusCanceled},
		OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusCanceled},
		OrderStatusPaid:            {},
		OrderStatusCanceled:        {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
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
