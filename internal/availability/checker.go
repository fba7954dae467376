// Package availability reconciles a cart against current inventory stock
// levels before an order may be built.
package availability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/inventory"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// Checker reconciles carts against the inventory gateway.
type Checker struct {
	gateway inventory.Gateway
	logger  *slog.Logger
}

// NewChecker creates an availability checker.
func NewChecker(gateway inventory.Gateway, logger *slog.Logger) *Checker {
	return &Checker{gateway: gateway, logger: logger}
}

// Reconcile checks every cart line against current stock and returns a new
// cart snapshot with availability flags set, plus anyUnavailable reporting
// whether any line was forced unavailable. The input cart is never mutated.
//
// Lines with stock below the requested quantity but above zero are capped and
// flagged as partially reduced; lines with zero stock are marked unavailable
// and deselected. A line whose current inventory price differs from the
// captured unit price keeps its frozen price but is flagged as price-changed.
//
// All stock queries run before any flag is applied: a gateway failure aborts
// the whole reconciliation with InventoryUnreachable and no partial result.
func (c *Checker) Reconcile(ctx context.Context, cart *domain.Cart) (*domain.Cart, bool, error) {
	stocks := make(map[string]*inventory.Stock, len(cart.Lines))
	for _, line := range cart.Lines {
		stock, err := c.gateway.GetStock(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Unknown to inventory means zero stock, not a hard failure.
				stocks[line.ProductID] = &inventory.Stock{ProductID: line.ProductID}
				continue
			}
			return nil, false, apperrors.InventoryUnreachable(err)
		}
		stocks[line.ProductID] = stock
	}

	updated := cart.Snapshot()
	anyUnavailable := false

	for i := range updated.Lines {
		line := &updated.Lines[i]
		stock := stocks[line.ProductID]

		line.PartiallyReduced = false
		line.PriceChanged = stock.CurrentPrice != 0 && stock.CurrentPrice != line.UnitPrice

		switch {
		case stock.Available == 0:
			line.Available = false
			line.Selected = false
			anyUnavailable = true
		case stock.Available < line.Quantity:
			c.logger.InfoContext(ctx, "capping cart line to available stock",
				slog.String("product_id", line.ProductID),
				slog.Int("requested", line.Quantity),
				slog.Int("available", stock.Available),
			)
			line.Quantity = stock.Available
			line.PartiallyReduced = true
			line.Available = true
		default:
			line.Available = true
		}
	}

	return updated, anyUnavailable, nil
}
