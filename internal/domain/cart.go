package domain

import "time"

// Cart represents a shopping cart of selectable media items.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartLine represents a single selectable product entry in the cart.
// UnitPrice is captured at add-to-cart time; Available, PartiallyReduced,
// and PriceChanged are set by availability reconciliation, not by the user.
type CartLine struct {
	ProductID        string `json:"product_id"`
	Title            string `json:"title"`
	UnitPrice        int64  `json:"unit_price"`
	Quantity         int    `json:"quantity"`
	Selected         bool   `json:"selected"`
	Available        bool   `json:"available"`
	PartiallyReduced bool   `json:"partially_reduced,omitempty"`
	PriceChanged     bool   `json:"price_changed,omitempty"`
}

// SelectedLines returns the lines the user has marked for checkout.
func (c *Cart) SelectedLines() []CartLine {
	var selected []CartLine
	for _, line := range c.Lines {
		if line.Selected {
			selected = append(selected, line)
		}
	}
	return selected
}

// SelectedSubtotal calculates the subtotal of all selected lines (in the
// smallest currency unit).
func (c *Cart) SelectedSubtotal() int64 {
	var total int64
	for _, line := range c.Lines {
		if line.Selected {
			total += line.UnitPrice * int64(line.Quantity)
		}
	}
	return total
}

// SelectedItemCount returns the total quantity across selected lines.
func (c *Cart) SelectedItemCount() int {
	var count int
	for _, line := range c.Lines {
		if line.Selected {
			count += line.Quantity
		}
	}
	return count
}

// FindLineIndex returns the index of the cart line matching the given product
// ID. Returns -1 if not found. Product IDs are unique within a cart.
func (c *Cart) FindLineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Snapshot returns a deep copy of the cart. Reconciliation operates on the
// copy so the caller's cart is never mutated in place.
func (c *Cart) Snapshot() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}
