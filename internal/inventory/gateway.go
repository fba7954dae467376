// Package inventory defines the gateway used to query current stock levels
// and prices from the inventory system.
package inventory

import "context"

// Stock is the inventory system's view of a single product.
type Stock struct {
	ProductID    string `json:"product_id"`
	Available    int    `json:"available"`
	CurrentPrice int64  `json:"current_price"`
}

// Gateway defines the interface to the inventory system.
type Gateway interface {
	// GetStock returns the current stock level and price for a product.
	GetStock(ctx context.Context, productID string) (*Stock, error)
}
