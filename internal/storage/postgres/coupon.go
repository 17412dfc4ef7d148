package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

const (
	listCouponsSQL = `SELECT code, scope, product, rate, cap, exclusive, description
		FROM coupons WHERE active = TRUE ORDER BY code`

	upsertCouponSQL = `INSERT INTO coupons (code, scope, product, rate, cap, exclusive, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			scope = EXCLUDED.scope,
			product = EXCLUDED.product,
			rate = EXCLUDED.rate,
			cap = EXCLUDED.cap,
			exclusive = EXCLUDED.exclusive,
			description = EXCLUDED.description,
			active = TRUE`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// List returns every active descriptor ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Descriptor, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	descriptors, err := pgx.CollectRows(rows, scanDescriptor)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return descriptors, nil
}

// UpsertMany inserts or replaces descriptors, reactivating them, in one
// batch round trip.
func (r *CouponRepository) UpsertMany(ctx context.Context, descriptors []coupon.Descriptor) error {
	if len(descriptors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range descriptors {
		batch.Queue(upsertCouponSQL, upsertCouponArgs(d)...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for _, d := range descriptors {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upserting coupon %q: %w", d.Code, err)
		}
	}
	return nil
}

func upsertCouponArgs(d coupon.Descriptor) []any {
	var prod *string
	if d.Scope == coupon.ScopeProduct {
		s := string(d.Product)
		prod = &s
	}
	return []any{d.Code, string(d.Scope), prod, d.Rate, d.Cap, d.Exclusive, d.Description}
}

func scanDescriptor(row pgx.CollectableRow) (coupon.Descriptor, error) {
	var (
		d     coupon.Descriptor
		scope string
		prod  *string
	)
	if err := row.Scan(&d.Code, &scope, &prod, &d.Rate, &d.Cap, &d.Exclusive, &d.Description); err != nil {
		return coupon.Descriptor{}, err
	}
	d.Scope = coupon.Scope(scope)
	if prod != nil {
		d.Product = product.Product(*prod)
	}
	return d, nil
}
