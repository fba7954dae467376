package domain

import "time"

// Invoice represents the final statement for an order. TotalAmount is the
// order amount (subtotal plus VAT) plus shipping fees.
type Invoice struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"order_id"`
	Description    string         `json:"description,omitempty"`
	SubtotalAmount int64          `json:"subtotal_amount"`
	VATAmount      int64          `json:"vat_amount"`
	ShippingAmount int64          `json:"shipping_amount"`
	TotalAmount    int64          `json:"total_amount"`
	Currency       string         `json:"currency"`
	Payment        *PaymentResult `json:"payment,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
