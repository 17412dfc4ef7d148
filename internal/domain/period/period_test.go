package period

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func normal() *Period {
	p := New("Normal")
	p.SetUnitPrice(product.Apple, d("500"))
	p.SetUnitPrice(product.Banana, d("450"))
	p.SetDiscount(product.Apple, d("20"), d("0.15"))
	p.SetDiscount(product.Apple, d("5"), d("0.1"))
	p.SetDiscount(product.Banana, d("2"), d("0.1"))
	return p
}

func TestBaseAmount(t *testing.T) {
	tests := []struct {
		name string
		prod product.Product
		qty  string
		want string
	}{
		{name: "below first tier", prod: product.Apple, qty: "2", want: "1000"},
		{name: "just below tier", prod: product.Apple, qty: "4.99", want: "2495"},
		{name: "at first tier", prod: product.Apple, qty: "5", want: "2250"},
		{name: "between tiers", prod: product.Apple, qty: "10", want: "4500"},
		{name: "at top tier", prod: product.Apple, qty: "20", want: "8500"},
		{name: "banana single", prod: product.Banana, qty: "1", want: "450"},
		{name: "banana tier", prod: product.Banana, qty: "2", want: "810"},
		{name: "fractional weight", prod: product.Banana, qty: "0.5", want: "225"},
	}

	p := normal()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.BaseAmount(tt.prod, d(tt.qty))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestBaseAmount_Unpriced(t *testing.T) {
	p := New("Empty")

	_, err := p.BaseAmount(product.Apple, d("1"))

	var upErr *UnpricedProductError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "Empty", upErr.Period)
	assert.Equal(t, product.Apple, upErr.Product)
}

func TestSetDiscount_ReplacesThreshold(t *testing.T) {
	p := normal()
	p.SetDiscount(product.Banana, d("2"), d("0.2"))

	tiers := p.Tiers(product.Banana)
	require.Len(t, tiers, 1)
	assert.True(t, d("0.2").Equal(tiers[0].Rate))
}

func TestTierRate_ZeroThreshold(t *testing.T) {
	p := New("Zero")
	p.SetUnitPrice(product.Apple, d("100"))
	p.SetDiscount(product.Apple, d("0"), d("0.5"))

	assert.True(t, p.TierRate(product.Apple, d("3")).IsZero())
}

func TestTiers_Sorted(t *testing.T) {
	tiers := normal().Tiers(product.Apple)
	require.Len(t, tiers, 2)
	assert.True(t, d("5").Equal(tiers[0].Threshold))
	assert.True(t, d("20").Equal(tiers[1].Threshold))
}
