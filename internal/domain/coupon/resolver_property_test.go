package coupon

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

func drawLines(t *rapid.T) []Line {
	var lines []Line
	for _, p := range product.All() {
		if rapid.Bool().Draw(t, "has_"+p.String()) {
			base := rapid.Int64Range(1, 100_000).Draw(t, "base_"+p.String())
			lines = append(lines, Line{Product: p, Base: decimal.New(base, -1)})
		}
	}
	return lines
}

func drawCodes(t *rapid.T, label string) []string {
	return rapid.SliceOfN(rapid.SampledFrom(DefaultCodes), 0, 8).Draw(t, label)
}

func present(lines []Line, p product.Product) bool {
	return slices.ContainsFunc(lines, func(l Line) bool { return l.Product == p })
}

func TestProperty_Idempotent(t *testing.T) {
	r := NewResolver(DefaultCatalog())
	rapid.Check(t, func(t *rapid.T) {
		lines := drawLines(t)
		codes := drawCodes(t, "codes")

		first, err := r.Resolve(lines, codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		second, err := r.Resolve(lines, codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !first.Total.Equal(second.Total) {
			t.Fatalf("totals differ: %s vs %s", first.Total, second.Total)
		}
		if !slices.Equal(first.Unused(), second.Unused()) {
			t.Fatalf("unused differ: %v vs %v", first.Unused(), second.Unused())
		}
	})
}

func TestProperty_RateNeverExceedsCeiling(t *testing.T) {
	r := NewResolver(DefaultCatalog())
	rapid.Check(t, func(t *rapid.T) {
		res, err := r.Resolve(drawLines(t), drawCodes(t, "codes"))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if res.Exclusive >= 0 {
			return
		}
		for _, l := range res.Lines {
			sum := decimal.Zero
			for _, c := range l.Contributions {
				sum = sum.Add(c.Rate)
			}
			if !sum.Equal(l.Rate) {
				t.Fatalf("%s: contributions %s differ from rate %s", l.Product, sum, l.Rate)
			}
			if l.Cap.Valid && l.Rate.GreaterThan(l.Cap.Decimal) {
				t.Fatalf("%s: rate %s exceeds cap %s", l.Product, l.Rate, l.Cap.Decimal)
			}
		}
	})
}

func TestProperty_ExclusiveVoidsOthers(t *testing.T) {
	r := NewResolver(DefaultCatalog())
	rapid.Check(t, func(t *rapid.T) {
		codes := drawCodes(t, "codes")
		at := rapid.IntRange(0, len(codes)).Draw(t, "at")
		codes = slices.Insert(codes, at, DefaultExclusive)

		res, err := r.Resolve(drawLines(t), codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		first := slices.Index(codes, DefaultExclusive)
		want := slices.Delete(slices.Clone(codes), first, first+1)
		if got := res.Unused(); !slices.Equal(got, want) {
			t.Fatalf("unused %v, want %v", got, want)
		}
	})
}

func TestProperty_AbsentProductCouponUnused(t *testing.T) {
	catalog := DefaultCatalog()
	r := NewResolver(catalog)
	rapid.Check(t, func(t *rapid.T) {
		lines := drawLines(t)
		codes := drawCodes(t, "codes")

		res, err := r.Resolve(lines, codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		for i, code := range codes {
			desc, _ := catalog.Describe(code)
			if desc.Scope == ScopeProduct && !present(lines, desc.Product) && res.Applied[i] {
				t.Fatalf("%s applied at %d without %s in cart", code, i, desc.Product)
			}
		}
	})
}

func TestProperty_ExtraPlainCouponNeverRaisesTotal(t *testing.T) {
	r := NewResolver(DefaultCatalog())
	rapid.Check(t, func(t *rapid.T) {
		lines := drawLines(t)
		codes := slices.DeleteFunc(drawCodes(t, "codes"), func(c string) bool { return c == DefaultExclusive })
		extra := rapid.SampledFrom([]string{"A5", "B5", "X5"}).Draw(t, "extra")

		before, err := r.Resolve(lines, codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		after, err := r.Resolve(lines, append(slices.Clone(codes), extra))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if after.Total.GreaterThan(before.Total) {
			t.Fatalf("adding %s raised total from %s to %s", extra, before.Total, after.Total)
		}
	})
}

func TestProperty_LineRateNeverExceedsFullDiscount(t *testing.T) {
	r := NewResolver(DefaultCatalog())
	plain := []string{"A5", "B5", "X5"}
	rapid.Check(t, func(t *rapid.T) {
		codes := rapid.SliceOfN(rapid.SampledFrom(plain), 0, 60).Draw(t, "codes")

		res, err := r.Resolve(drawLines(t), codes)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if res.Total.IsNegative() {
			t.Fatalf("negative total %s", res.Total)
		}
		for _, l := range res.Lines {
			if l.Rate.GreaterThan(one) {
				t.Fatalf("%s: rate %s exceeds 1", l.Product, l.Rate)
			}
		}
	})
}
