// Package pricing computes cart totals: subtotal over selected lines, VAT by
// integer truncation, and the final total including shipping fees.
package pricing

import (
	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/pkg/errors"
)

// Result holds the computed totals, all in the smallest currency unit.
type Result struct {
	Subtotal    int64 `json:"subtotal"`
	VAT         int64 `json:"vat"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

// ComputeTotals prices the selected cart lines. VAT is truncated toward zero
// (floor for non-negative amounts) to match currency-unit semantics: for a
// subtotal of 199 at 10% the VAT is 19, never 20. An empty selection yields
// zero totals and is not an error.
func ComputeTotals(lines []domain.CartLine, vatPercent int64, shippingFee int64) (Result, error) {
	if vatPercent < 0 || vatPercent > 100 {
		return Result{}, errors.InvalidInput("vat percent must be between 0 and 100")
	}
	if shippingFee < 0 {
		return Result{}, errors.InvalidInput("shipping fee must not be negative")
	}

	var subtotal int64
	for _, line := range lines {
		if !line.Selected {
			continue
		}
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	vat := subtotal * vatPercent / 100

	return Result{
		Subtotal:    subtotal,
		VAT:         vat,
		ShippingFee: shippingFee,
		Total:       subtotal + vat + shippingFee,
	}, nil
}
