// Package shipping quotes delivery fees for an order attempt.
package shipping

import (
	"context"

	"github.com/hivx/My-store/internal/domain"
)

// FeeProvider quotes the shipping fee for a delivery, in the smallest
// currency unit.
type FeeProvider interface {
	Quote(ctx context.Context, info domain.ShippingInfo, itemCount int, subtotal int64) (int64, error)
}
