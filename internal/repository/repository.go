// Package repository defines the persistence interfaces for carts, orders,
// invoices, and workflow handles.
package repository

import (
	"context"

	"github.com/hivx/My-store/internal/domain"
)

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Save inserts a new order and its lines atomically.
	Save(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including lines.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id string, status string) error
}

// InvoiceRepository defines the interface for invoice persistence operations.
type InvoiceRepository interface {
	// Save inserts a new invoice.
	Save(ctx context.Context, invoice *domain.Invoice) error

	// GetByOrderID retrieves the invoice generated for an order, if any.
	GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error)

	// AttachPaymentResult records the settlement result on an invoice.
	AttachPaymentResult(ctx context.Context, invoiceID string, result *domain.PaymentResult) error
}

// CartRepository defines the interface for cart persistence operations.
// Carts are session-scoped and expire; they live in Redis, not Postgres.
type CartRepository interface {
	// Get retrieves the cart for a session. Returns ErrNotFound when the
	// session has no cart or it has expired.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save stores the cart and refreshes its TTL.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a session.
	Delete(ctx context.Context, sessionID string) error
}
