// Package period models named pricing configurations: a unit price per
// product plus quantity tiers that reduce the line amount before coupons.
package period

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// ErrNotFound is returned when no period exists under the requested name.
var ErrNotFound = errors.New("period not found")

// UnpricedProductError indicates the period has no unit price for a product.
type UnpricedProductError struct {
	Period  string
	Product product.Product
}

func (e *UnpricedProductError) Error() string {
	return fmt.Sprintf("period %q has no unit price for %s", e.Period, e.Product)
}

// Tier is a quantity threshold and the discount rate that applies once the
// quantity reaches it.
type Tier struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Period is mutated only during setup. Once handed to pricing it must be
// treated as read-only.
type Period struct {
	name   string
	prices map[product.Product]decimal.Decimal
	tiers  map[product.Product][]Tier
}

// New returns an empty period.
func New(name string) *Period {
	return &Period{
		name:   name,
		prices: make(map[product.Product]decimal.Decimal),
		tiers:  make(map[product.Product][]Tier),
	}
}

func (p *Period) Name() string { return p.name }

// SetUnitPrice sets the price of one unit of quantity of a product.
func (p *Period) SetUnitPrice(prod product.Product, price decimal.Decimal) {
	p.prices[prod] = price
}

// SetDiscount registers a tier. Setting the same threshold twice replaces the
// earlier rate.
func (p *Period) SetDiscount(prod product.Product, threshold, rate decimal.Decimal) {
	tiers := p.tiers[prod]
	for i := range tiers {
		if tiers[i].Threshold.Equal(threshold) {
			tiers[i].Rate = rate
			return
		}
	}
	tiers = append(tiers, Tier{Threshold: threshold, Rate: rate})
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Threshold.LessThan(tiers[j].Threshold)
	})
	p.tiers[prod] = tiers
}

// UnitPrice returns the unit price of prod and whether one is configured.
func (p *Period) UnitPrice(prod product.Product) (decimal.Decimal, bool) {
	price, ok := p.prices[prod]
	return price, ok
}

// Tiers returns the tiers of prod ordered by threshold.
func (p *Period) Tiers(prod product.Product) []Tier {
	out := make([]Tier, len(p.tiers[prod]))
	copy(out, p.tiers[prod])
	return out
}

// TierRate returns the rate of the highest threshold not exceeding qty. A
// zero threshold never grants a discount.
func (p *Period) TierRate(prod product.Product, qty decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	for _, t := range p.tiers[prod] {
		if t.Threshold.GreaterThan(qty) {
			break
		}
		if t.Threshold.IsPositive() {
			rate = t.Rate
		}
	}
	return rate
}

// BaseAmount is unit price times quantity, reduced by the matching tier.
func (p *Period) BaseAmount(prod product.Product, qty decimal.Decimal) (decimal.Decimal, error) {
	price, ok := p.prices[prod]
	if !ok {
		return decimal.Zero, &UnpricedProductError{Period: p.name, Product: prod}
	}
	gross := price.Mul(qty)
	return gross.Mul(decimal.NewFromInt(1).Sub(p.TierRate(prod, qty))), nil
}

// Repository provides lookup of periods by name.
type Repository interface {
	Get(ctx context.Context, name string) (*Period, error)
}
