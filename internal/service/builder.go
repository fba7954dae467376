package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/pricing"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// OrderBuilder constructs immutable orders from reconciled cart snapshots.
type OrderBuilder struct {
	// now is injectable for tests.
	now func() time.Time
}

// NewOrderBuilder creates a new order builder.
func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{now: time.Now}
}

// Build creates an order from the selected lines of a reconciled cart.
// Unit prices are frozen at their current cart values: later price changes
// never retroactively affect an existing order. The cart must have passed
// reconciliation with no unavailable lines; Build fails with EmptySelection
// if nothing is selected.
func (b *OrderBuilder) Build(cart *domain.Cart, shipping *domain.ShippingInfo, totals pricing.Result) (*domain.Order, error) {
	selected := cart.SelectedLines()
	if len(selected) == 0 {
		return nil, apperrors.EmptySelection()
	}
	if shipping == nil {
		return nil, apperrors.InvalidInput("shipping info is required to build an order")
	}

	lines := make([]domain.OrderLine, len(selected))
	for i, line := range selected {
		lines[i] = domain.OrderLine{
			ProductID: line.ProductID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice * int64(line.Quantity),
		}
	}

	shippingCopy := *shipping
	now := b.now().UTC()

	return &domain.Order{
		ID:             uuid.New().String(),
		CartID:         cart.ID,
		SessionID:      cart.SessionID,
		Status:         domain.OrderStatusCreated,
		Lines:          lines,
		SubtotalAmount: totals.Subtotal,
		VATAmount:      totals.VAT,
		Amount:         totals.Subtotal + totals.VAT,
		ShippingFees:   totals.ShippingFee,
		Currency:       cart.Currency,
		Shipping:       &shippingCopy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
