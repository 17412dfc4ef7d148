package coupon

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

var one = decimal.NewFromInt(1)

// Line is a cart line priced by the period, before coupons.
type Line struct {
	Product product.Product
	Base    decimal.Decimal
}

// Contribution records one coupon occurrence accepted for a product. Rate is
// the marginal rate it added, which is zero for a coupon that only repeats a
// ceiling already in force.
type Contribution struct {
	Index int
	Code  string
	Rate  decimal.Decimal
}

// LineResult is the outcome of resolution for one product.
type LineResult struct {
	Product product.Product
	Base    decimal.Decimal
	// Cap is the strictest ceiling among the product's candidates, if any.
	Cap           decimal.NullDecimal
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	Contributions []Contribution
}

// Resolution partitions the submitted coupon occurrences into applied and
// unused and carries the discounted totals.
type Resolution struct {
	Codes   []string
	Applied []bool
	Lines   []LineResult
	// Exclusive is the index of the exclusive coupon that voided the others,
	// or -1.
	Exclusive int
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
}

// Unused returns the codes that had no effect, in input order. Repeated
// codes are reported per occurrence.
func (r *Resolution) Unused() []string {
	unused := make([]string, 0, len(r.Codes))
	for i, applied := range r.Applied {
		if !applied {
			unused = append(unused, r.Codes[i])
		}
	}
	return unused
}

// Resolver applies coupons from a Catalog. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

// NewResolver returns a Resolver backed by catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve decides which of codes apply to lines. Every code is described
// before any discount is computed, so an unknown code fails the whole call.
func (r *Resolver) Resolve(lines []Line, codes []string) (*Resolution, error) {
	descriptors := make([]Descriptor, len(codes))
	for i, code := range codes {
		d, err := r.catalog.Describe(code)
		if err != nil {
			return nil, err
		}
		descriptors[i] = d
	}

	lines = mergeLines(lines)
	res := &Resolution{
		Codes:     slices.Clone(codes),
		Applied:   make([]bool, len(codes)),
		Exclusive: -1,
		Subtotal:  decimal.Zero,
		Total:     decimal.Zero,
	}
	for _, l := range lines {
		res.Subtotal = res.Subtotal.Add(l.Base)
	}

	if i := slices.IndexFunc(descriptors, func(d Descriptor) bool { return d.Exclusive }); i >= 0 {
		resolveExclusive(res, lines, i, descriptors[i])
		return res, nil
	}

	for _, l := range lines {
		lr := resolveLine(l, descriptors, res.Applied)
		res.Lines = append(res.Lines, lr)
		res.Total = res.Total.Add(lr.Amount)
	}
	return res, nil
}

// resolveExclusive applies the flat rate of the exclusive coupon at index i
// to the subtotal. All other occurrences stay unused.
func resolveExclusive(res *Resolution, lines []Line, i int, d Descriptor) {
	res.Exclusive = i
	res.Applied[i] = true
	keep := one.Sub(d.Rate)
	for _, l := range lines {
		res.Lines = append(res.Lines, LineResult{
			Product:       l.Product,
			Base:          l.Base,
			Rate:          d.Rate,
			Amount:        l.Base.Mul(keep),
			Contributions: []Contribution{{Index: i, Code: d.Code, Rate: d.Rate}},
		})
	}
	res.Total = res.Subtotal.Mul(keep)
}

type candidate struct {
	index int
	desc  Descriptor
	// marginal is the rate counted toward the line total.
	marginal decimal.Decimal
}

func resolveLine(l Line, descriptors []Descriptor, applied []bool) LineResult {
	var candidates []*candidate
	ceiling := decimal.NullDecimal{}
	for i, d := range descriptors {
		if !d.Targets(l.Product) {
			continue
		}
		candidates = append(candidates, &candidate{index: i, desc: d})
		if d.Capped() && (!ceiling.Valid || d.Cap.Decimal.LessThan(ceiling.Decimal)) {
			ceiling = d.Cap
		}
	}

	// A line without a ceiling can still never be discounted past 100%.
	limit := one
	if ceiling.Valid && ceiling.Decimal.LessThan(one) {
		limit = ceiling.Decimal
	}

	total := decimal.Zero
	var accepted []*candidate
	for _, c := range candidates {
		// A looser ceiling is redundant once a stricter one governs the line.
		if c.desc.Capped() && c.desc.Cap.Decimal.GreaterThan(ceiling.Decimal) {
			continue
		}
		switch {
		case c.desc.Capped() && repeatsAccepted(accepted, c.desc):
			// Repeating an accepted ceiling coupon only restates the ceiling.
			c.marginal = decimal.Zero
		case total.Add(c.desc.Rate).LessThanOrEqual(limit):
			c.marginal = c.desc.Rate
		default:
			continue
		}
		total = total.Add(c.marginal)
		accepted = append(accepted, c)
		applied[c.index] = true
	}

	lr := LineResult{
		Product: l.Product,
		Base:    l.Base,
		Cap:     ceiling,
		Rate:    total,
		Amount:  l.Base.Mul(one.Sub(total)),
	}
	for _, c := range accepted {
		lr.Contributions = append(lr.Contributions, Contribution{
			Index: c.index,
			Code:  c.desc.Code,
			Rate:  c.marginal,
		})
	}
	return lr
}

// repeatsAccepted reports whether an accepted capped candidate has the same
// rate and cap as d.
func repeatsAccepted(accepted []*candidate, d Descriptor) bool {
	for _, a := range accepted {
		if a.desc.Capped() && a.desc.Rate.Equal(d.Rate) && a.desc.Cap.Decimal.Equal(d.Cap.Decimal) {
			return true
		}
	}
	return false
}

// mergeLines sums the base amounts of repeated products, keeping first-seen
// order.
func mergeLines(lines []Line) []Line {
	merged := make([]Line, 0, len(lines))
	index := make(map[product.Product]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.Product]; ok {
			merged[i].Base = merged[i].Base.Add(l.Base)
			continue
		}
		index[l.Product] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
