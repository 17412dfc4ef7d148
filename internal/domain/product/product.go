package product

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownProduct is returned when a product name is not part of the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Product identifies a weighed catalog item. The set is closed.
type Product string

const (
	Apple  Product = "APPLE"
	Banana Product = "BANANA"
)

// All lists every product in catalog order.
func All() []Product {
	return []Product{Apple, Banana}
}

// Parse converts a product name (case-insensitive) into a Product.
func Parse(name string) (Product, error) {
	p := Product(strings.ToUpper(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", errors.Wrapf(ErrUnknownProduct, "%q", name)
	}
	return p, nil
}

// Valid reports whether p belongs to the catalog.
func (p Product) Valid() bool {
	switch p {
	case Apple, Banana:
		return true
	default:
		return false
	}
}

// Letter returns the single-letter target used in product coupon codes.
func (p Product) Letter() byte {
	switch p {
	case Apple:
		return 'A'
	case Banana:
		return 'B'
	default:
		return 0
	}
}

// FromLetter is the inverse of Letter.
func FromLetter(l byte) (Product, bool) {
	for _, p := range All() {
		if p.Letter() == l {
			return p, true
		}
	}
	return "", false
}

func (p Product) String() string {
	return string(p)
}
