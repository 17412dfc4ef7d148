// Package coupon describes checkout coupons and resolves which of them
// apply to a priced cart.
package coupon

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// Scope tells which cart lines a coupon targets.
type Scope string

const (
	// ScopeProduct targets the single product named by the descriptor.
	ScopeProduct Scope = "product"
	// ScopeGlobal targets every product present in the cart.
	ScopeGlobal Scope = "global"
)

// UnknownCouponError is returned when a code is not in the catalog.
type UnknownCouponError struct {
	Code string
}

func (e *UnknownCouponError) Error() string {
	return fmt.Sprintf("unknown coupon code %q", e.Code)
}

// Descriptor is the static definition of a coupon code.
type Descriptor struct {
	Code    string
	Scope   Scope
	Product product.Product // set only for ScopeProduct
	// Rate is the discount fraction in (0, 1).
	Rate decimal.Decimal
	// Cap bounds the total rate of the product when valid ("MAX" coupons).
	Cap decimal.NullDecimal
	// Exclusive coupons void every other coupon in the request.
	Exclusive   bool
	Description string
}

// Capped reports whether the descriptor carries a per-product ceiling.
func (d Descriptor) Capped() bool {
	return d.Cap.Valid
}

// Targets reports whether the coupon contributes to p.
func (d Descriptor) Targets(p product.Product) bool {
	return d.Scope == ScopeGlobal || d.Product == p
}

// Catalog is an immutable code -> descriptor table.
type Catalog struct {
	byCode map[string]Descriptor
	codes  []string
}

// NewCatalog builds a catalog. A later descriptor with an already seen code
// replaces the earlier one.
func NewCatalog(descriptors ...Descriptor) *Catalog {
	c := &Catalog{byCode: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, ok := c.byCode[d.Code]; !ok {
			c.codes = append(c.codes, d.Code)
		}
		c.byCode[d.Code] = d
	}
	return c
}

// Describe returns the descriptor of code or *UnknownCouponError.
func (c *Catalog) Describe(code string) (Descriptor, error) {
	d, ok := c.byCode[code]
	if !ok {
		return Descriptor{}, &UnknownCouponError{Code: code}
	}
	return d, nil
}

// Descriptors returns every descriptor in insertion order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.codes))
	for i, code := range c.codes {
		out[i] = c.byCode[code]
	}
	return out
}

// Len returns the number of codes in the catalog.
func (c *Catalog) Len() int {
	return len(c.codes)
}

// Repository provides storage of coupon descriptors.
type Repository interface {
	List(ctx context.Context) ([]Descriptor, error)
	UpsertMany(ctx context.Context, descriptors []Descriptor) error
}

// Load reads every stored descriptor into a Catalog.
func Load(ctx context.Context, repo Repository) (*Catalog, error) {
	descriptors, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return NewCatalog(descriptors...), nil
}
