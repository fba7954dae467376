// Package memory provides an in-memory inventory gateway for development
// and testing.
package memory

import (
	"context"
	"sync"

	"github.com/hivx/My-store/internal/inventory"
	"github.com/hivx/My-store/pkg/errors"
)

// Gateway is an in-memory inventory gateway backed by a map.
type Gateway struct {
	mu    sync.RWMutex
	stock map[string]inventory.Stock
}

// NewGateway creates an empty in-memory inventory gateway.
func NewGateway() *Gateway {
	return &Gateway{stock: make(map[string]inventory.Stock)}
}

// SetStock seeds or replaces the stock entry for a product.
func (g *Gateway) SetStock(productID string, available int, currentPrice int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stock[productID] = inventory.Stock{
		ProductID:    productID,
		Available:    available,
		CurrentPrice: currentPrice,
	}
}

// GetStock returns the seeded stock for a product.
func (g *Gateway) GetStock(_ context.Context, productID string) (*inventory.Stock, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s, ok := g.stock[productID]
	if !ok {
		return nil, errors.NotFound("product", productID)
	}
	return &s, nil
}
