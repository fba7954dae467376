package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivx/My-store/internal/domain"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// InvoiceGenerator produces the final statement for an order.
type InvoiceGenerator struct {
	now func() time.Time
}

// NewInvoiceGenerator creates a new invoice generator.
func NewInvoiceGenerator() *InvoiceGenerator {
	return &InvoiceGenerator{now: time.Now}
}

// Generate builds the invoice for an order. The total is the order amount
// (subtotal plus VAT) plus shipping fees, all integer arithmetic: repeated
// calls on the same order produce the same totals. Fails if the order has
// no lines.
func (g *InvoiceGenerator) Generate(order *domain.Order) (*domain.Invoice, error) {
	if order == nil {
		return nil, apperrors.InvalidInput("order is required")
	}
	if len(order.Lines) == 0 {
		return nil, apperrors.InvalidInput("cannot generate an invoice for an order with no lines")
	}

	now := g.now().UTC()

	return &domain.Invoice{
		ID:             uuid.New().String(),
		OrderID:        order.ID,
		Description:    fmt.Sprintf("Invoice for order %s", order.ID),
		SubtotalAmount: order.SubtotalAmount,
		VATAmount:      order.VATAmount,
		ShippingAmount: order.ShippingFees,
		TotalAmount:    order.Amount + order.ShippingFees,
		Currency:       order.Currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
