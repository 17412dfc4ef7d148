// Package pricing turns a cart, a period and coupon codes into a final,
// rounded price.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
)

// PriceInfo is the result handed back to the customer.
type PriceInfo struct {
	Amount        decimal.Decimal
	UnusedCoupons []string
	// Resolution explains how the coupons were applied.
	Resolution *coupon.Resolution
}

// Service prices carts. It keeps no state between calls.
type Service struct {
	resolver *coupon.Resolver
}

// NewService creates a Service that resolves coupons against catalog.
func NewService(catalog *coupon.Catalog) *Service {
	return &Service{resolver: coupon.NewResolver(catalog)}
}

// GetCartPrice computes the base amount of every line under p, applies
// codes and rounds the total once.
func (s *Service) GetCartPrice(c *cart.Cart, p *period.Period, codes []string) (*PriceInfo, error) {
	items := c.Items()
	lines := make([]coupon.Line, len(items))
	for i, it := range items {
		base, err := p.BaseAmount(it.Product, it.Quantity)
		if err != nil {
			return nil, err
		}
		lines[i] = coupon.Line{Product: it.Product, Base: base}
	}

	res, err := s.resolver.Resolve(lines, codes)
	if err != nil {
		return nil, err
	}

	return &PriceInfo{
		Amount:        RoundTo5(res.Total),
		UnusedCoupons: res.Unused(),
		Resolution:    res,
	}, nil
}
