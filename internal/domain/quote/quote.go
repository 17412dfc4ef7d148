package quote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
)

// Quote is a priced cart as returned to the customer.
type Quote struct {
	ID            string
	Period        string
	Items         []cart.Item
	Coupons       []string
	Amount        decimal.Decimal
	UnusedCoupons []string
	CreatedAt     time.Time
}

// Repository defines persistence operations for quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
}
