package coupon

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// GlobalLetter is the target letter of coupons that apply to every product.
const GlobalLetter = 'X'

// ErrMalformedCode is returned when a code does not follow the
// <Target><Rate>[-MAX<Cap>] vocabulary.
var ErrMalformedCode = errors.New("malformed coupon code")

var codePattern = regexp.MustCompile(`^([A-Z])(\d+(?:\.\d+)?)(?:-MAX(\d+(?:\.\d+)?))?$`)

var hundred = decimal.NewFromInt(100)

// ParseOptions tunes how codes are turned into descriptors.
type ParseOptions struct {
	// Exclusive lists the codes that cannot be combined with any other coupon.
	Exclusive []string
}

// ParseCode builds a descriptor from a vocabulary code such as "A5",
// "B5-MAX10" or "X5". Rates and caps are written as percentages.
func ParseCode(code string, opts ParseOptions) (Descriptor, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return Descriptor{}, errors.Wrapf(ErrMalformedCode, "%q", code)
	}

	d := Descriptor{Code: code, Exclusive: slices.Contains(opts.Exclusive, code)}
	if m[1][0] == GlobalLetter {
		d.Scope = ScopeGlobal
	} else {
		p, ok := product.FromLetter(m[1][0])
		if !ok {
			return Descriptor{}, errors.Wrapf(ErrMalformedCode, "%q: unknown target %q", code, m[1])
		}
		d.Scope = ScopeProduct
		d.Product = p
	}

	pct := decimal.RequireFromString(m[2])
	if !pct.IsPositive() || !pct.LessThan(hundred) {
		return Descriptor{}, errors.Wrapf(ErrMalformedCode, "%q: rate must be within (0, 100)", code)
	}
	d.Rate = pct.Div(hundred)

	if m[3] != "" {
		capPct := decimal.RequireFromString(m[3])
		if capPct.LessThan(pct) || capPct.GreaterThan(hundred) {
			return Descriptor{}, errors.Wrapf(ErrMalformedCode, "%q: cap must be within [rate, 100]", code)
		}
		d.Cap = decimal.NewNullDecimal(capPct.Div(hundred))
	}
	d.Description = describe(d, pct)

	return d, nil
}

func describe(d Descriptor, pct decimal.Decimal) string {
	target := "every product"
	if d.Scope == ScopeProduct {
		target = string(d.Product)
	}
	s := fmt.Sprintf("%s%% off %s", pct, target)
	switch {
	case d.Exclusive:
		s += ", not combinable"
	case d.Capped():
		s += fmt.Sprintf(", up to %s%% per product", d.Cap.Decimal.Mul(hundred))
	}
	return s
}

// DefaultExclusive is the non-combinable code of the default vocabulary.
const DefaultExclusive = "X10"

// DefaultCodes is the calibration vocabulary served by DefaultCatalog.
var DefaultCodes = []string{
	"A5", "B5",
	"A5-MAX10", "B5-MAX10",
	"A5-MAX15", "B5-MAX15",
	"X5", "X5-MAX10",
	DefaultExclusive,
}

// DefaultCatalog returns a fresh catalog holding DefaultCodes.
func DefaultCatalog() *Catalog {
	opts := ParseOptions{Exclusive: []string{DefaultExclusive}}
	descriptors := make([]Descriptor, len(DefaultCodes))
	for i, code := range DefaultCodes {
		d, err := ParseCode(code, opts)
		if err != nil {
			panic(err)
		}
		descriptors[i] = d
	}
	return NewCatalog(descriptors...)
}
