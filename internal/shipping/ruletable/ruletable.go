// Package ruletable implements a fee provider driven by a static rule table:
// a base fee per province tier, a per-item surcharge, and a free-shipping
// subtotal threshold.
package ruletable

import (
	"context"
	"strings"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/pkg/errors"
)

// Config holds the fee table parameters.
type Config struct {
	// InnerCityProvinces get InnerCityBaseFee; everywhere else pays
	// OuterBaseFee.
	InnerCityProvinces []string
	InnerCityBaseFee   int64
	OuterBaseFee       int64

	// PerItemFee is added for every item beyond the first.
	PerItemFee int64

	// FreeShippingThreshold waives the fee entirely when the selected
	// subtotal reaches it. Zero disables free shipping.
	FreeShippingThreshold int64
}

// DefaultConfig returns the standard domestic fee table.
func DefaultConfig() Config {
	return Config{
		InnerCityProvinces:    []string{"Hanoi", "Ho Chi Minh City"},
		InnerCityBaseFee:      22000,
		OuterBaseFee:          30000,
		PerItemFee:            2500,
		FreeShippingThreshold: 100000,
	}
}

// Provider quotes fees from the rule table.
type Provider struct {
	cfg       Config
	innerCity map[string]struct{}
}

// NewProvider creates a rule-table fee provider.
func NewProvider(cfg Config) *Provider {
	inner := make(map[string]struct{}, len(cfg.InnerCityProvinces))
	for _, p := range cfg.InnerCityProvinces {
		inner[normalizeProvince(p)] = struct{}{}
	}
	return &Provider{cfg: cfg, innerCity: inner}
}

// Quote computes the shipping fee. The province decides the base fee, each
// item beyond the first adds a surcharge, and a subtotal at or above the free
// threshold waives the fee.
func (p *Provider) Quote(_ context.Context, info domain.ShippingInfo, itemCount int, subtotal int64) (int64, error) {
	if itemCount <= 0 {
		return 0, errors.InvalidInput("item count must be positive")
	}
	if info.Province == "" {
		return 0, errors.InvalidInput("province is required for a shipping quote")
	}

	if p.cfg.FreeShippingThreshold > 0 && subtotal >= p.cfg.FreeShippingThreshold {
		return 0, nil
	}

	fee := p.cfg.OuterBaseFee
	if _, ok := p.innerCity[normalizeProvince(info.Province)]; ok {
		fee = p.cfg.InnerCityBaseFee
	}

	fee += int64(itemCount-1) * p.cfg.PerItemFee

	return fee, nil
}

func normalizeProvince(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
