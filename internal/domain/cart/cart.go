// Package cart holds the validated set of product lines submitted for pricing.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// InvalidQuantityError indicates a line has a missing or non-positive quantity.
type InvalidQuantityError struct {
	Product  product.Product
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %s", e.Product, e.Quantity)
}

// Item is a single (product, quantity) line. Quantities are weights, so they
// may be fractional.
type Item struct {
	Product  product.Product `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Cart is an ordered list of lines with at most one line per product.
type Cart struct {
	items []Item
}

// New validates items and merges repeated products into the first line that
// names them, preserving first-seen order.
func New(items ...Item) (*Cart, error) {
	merged := make([]Item, 0, len(items))
	index := make(map[product.Product]int, len(items))
	for _, it := range items {
		if !it.Product.Valid() {
			return nil, fmt.Errorf("cart line %q: %w", it.Product, product.ErrUnknownProduct)
		}
		if !it.Quantity.IsPositive() {
			return nil, &InvalidQuantityError{Product: it.Product, Quantity: it.Quantity}
		}
		if i, ok := index[it.Product]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(it.Quantity)
			continue
		}
		index[it.Product] = len(merged)
		merged = append(merged, it)
	}
	return &Cart{items: merged}, nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// Quantity returns the quantity of p, or zero when p is absent.
func (c *Cart) Quantity(p product.Product) decimal.Decimal {
	for _, it := range c.items {
		if it.Product == p {
			return it.Quantity
		}
	}
	return decimal.Zero
}
