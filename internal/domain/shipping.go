package domain

// ShippingInfo holds the delivery details collected before invoicing.
type ShippingInfo struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Province     string `json:"province" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Instructions string `json:"instructions,omitempty"`
}
