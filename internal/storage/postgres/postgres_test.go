package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenking/kart-pricing/internal/domain/auth"
	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/quote"
)

func TestRepositoriesSatisfyDomainInterfaces(t *testing.T) {
	tests := []struct {
		name string
		impl func(repo any) bool
		repo any
	}{
		{
			name: "coupon",
			impl: func(r any) bool { _, ok := r.(coupon.Repository); return ok },
			repo: NewCouponRepository(nil),
		},
		{
			name: "period",
			impl: func(r any) bool { _, ok := r.(period.Repository); return ok },
			repo: NewPeriodRepository(nil),
		},
		{
			name: "quote",
			impl: func(r any) bool { _, ok := r.(quote.Repository); return ok },
			repo: NewQuoteRepository(nil),
		},
		{
			name: "api key",
			impl: func(r any) bool { _, ok := r.(auth.Repository); return ok },
			repo: NewAPIKeyRepository(nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.impl(tt.repo))
		})
	}
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"A5"}, nonNil([]string{"A5"}))
}
