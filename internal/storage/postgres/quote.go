package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-pricing/internal/domain/quote"
)

const createQuoteSQL = `INSERT INTO quotes (id, period, items, coupons, amount, unused_coupons, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

var _ quote.Repository = (*QuoteRepository)(nil)

// QuoteRepository implements quote.Repository backed by PostgreSQL.
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository returns a QuoteRepository that uses the given pool.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Create persists a quote. Items are stored as JSON in a JSONB column.
func (r *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	itemsJSON, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("marshaling quote items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createQuoteSQL,
		q.ID, q.Period, itemsJSON, nonNil(q.Coupons), q.Amount, nonNil(q.UnusedCoupons), q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating quote %q: %w", q.ID, err)
	}
	return nil
}
