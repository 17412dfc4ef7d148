package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

func TestParseCode(t *testing.T) {
	opts := ParseOptions{Exclusive: []string{"X10"}}

	tests := []struct {
		code          string
		wantScope     Scope
		wantProduct   product.Product
		wantRate      string
		wantCap       string
		wantExclusive bool
	}{
		{code: "A5", wantScope: ScopeProduct, wantProduct: product.Apple, wantRate: "0.05"},
		{code: "b5", wantScope: ScopeProduct, wantProduct: product.Banana, wantRate: "0.05"},
		{code: "B5-MAX10", wantScope: ScopeProduct, wantProduct: product.Banana, wantRate: "0.05", wantCap: "0.1"},
		{code: "X5", wantScope: ScopeGlobal, wantRate: "0.05"},
		{code: "X2.5-MAX7.5", wantScope: ScopeGlobal, wantRate: "0.025", wantCap: "0.075"},
		{code: "X10", wantScope: ScopeGlobal, wantRate: "0.1", wantExclusive: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCode(tt.code, opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScope, got.Scope)
			assert.Equal(t, tt.wantProduct, got.Product)
			assert.True(t, d(tt.wantRate).Equal(got.Rate), "rate %s", got.Rate)
			assert.Equal(t, tt.wantExclusive, got.Exclusive)
			if tt.wantCap == "" {
				assert.False(t, got.Capped())
			} else {
				require.True(t, got.Capped())
				assert.True(t, d(tt.wantCap).Equal(got.Cap.Decimal), "cap %s", got.Cap.Decimal)
			}
			assert.NotEmpty(t, got.Description)
		})
	}
}

func TestParseCode_Malformed(t *testing.T) {
	for _, code := range []string{"", "A", "5A", "Z5", "A0", "A100", "A5-MAX", "A10-MAX5", "A5-MAX101", "A5_MAX10"} {
		t.Run(code, func(t *testing.T) {
			_, err := ParseCode(code, ParseOptions{})
			require.ErrorIs(t, err, ErrMalformedCode)
		})
	}
}

func TestDescribe(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, len(DefaultCodes), c.Len())

	got, err := c.Describe("X5-MAX10")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, got.Scope)
	assert.Equal(t, "5% off every product, up to 10% per product", got.Description)

	_, err = c.Describe("x5-max10")
	var ucErr *UnknownCouponError
	require.ErrorAs(t, err, &ucErr)
	assert.Equal(t, "x5-max10", ucErr.Code)
}

func TestNewCatalog_LastDescriptorWins(t *testing.T) {
	first, err := ParseCode("A5", ParseOptions{})
	require.NoError(t, err)
	second := first
	second.Description = "replaced"

	c := NewCatalog(first, second)
	require.Equal(t, 1, c.Len())

	got, err := c.Describe("A5")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Description)
	assert.Equal(t, []Descriptor{second}, c.Descriptors())
}

func TestDescriptor_Targets(t *testing.T) {
	c := DefaultCatalog()
	a5, _ := c.Describe("A5")
	x5, _ := c.Describe("X5")

	assert.True(t, a5.Targets(product.Apple))
	assert.False(t, a5.Targets(product.Banana))
	assert.True(t, x5.Targets(product.Apple))
	assert.True(t, x5.Targets(product.Banana))
}
