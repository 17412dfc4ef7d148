package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

const (
	periodExistsSQL = `SELECT EXISTS (SELECT 1 FROM periods WHERE name = $1)`

	listPeriodNamesSQL = `SELECT name FROM periods ORDER BY name`

	listPeriodPricesSQL = `SELECT product, unit_price FROM period_prices WHERE period = $1`

	listPeriodTiersSQL = `SELECT product, threshold, rate FROM period_tiers
		WHERE period = $1 ORDER BY product, threshold`

	upsertPeriodSQL = `INSERT INTO periods (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`

	deletePeriodPricesSQL = `DELETE FROM period_prices WHERE period = $1`
	deletePeriodTiersSQL  = `DELETE FROM period_tiers WHERE period = $1`

	insertPeriodPriceSQL = `INSERT INTO period_prices (period, product, unit_price) VALUES ($1, $2, $3)`
	insertPeriodTierSQL  = `INSERT INTO period_tiers (period, product, threshold, rate) VALUES ($1, $2, $3, $4)`
)

var _ period.Repository = (*PeriodRepository)(nil)

// PeriodRepository implements period.Repository backed by PostgreSQL.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository returns a PeriodRepository that uses the given pool.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

type priceRow struct {
	Product   string
	UnitPrice decimal.Decimal
}

type tierRow struct {
	Product   string
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Get loads a period with its prices and tiers. Returns period.ErrNotFound
// when no period has that name.
func (r *PeriodRepository) Get(ctx context.Context, name string) (*period.Period, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, periodExistsSQL, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("getting period %q: %w", name, err)
	}
	if !exists {
		return nil, period.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, listPeriodPricesSQL, name)
	if err != nil {
		return nil, fmt.Errorf("listing prices of period %q: %w", name, err)
	}
	prices, err := pgx.CollectRows(rows, pgx.RowToStructByPos[priceRow])
	if err != nil {
		return nil, fmt.Errorf("listing prices of period %q: %w", name, err)
	}

	rows, err = r.pool.Query(ctx, listPeriodTiersSQL, name)
	if err != nil {
		return nil, fmt.Errorf("listing tiers of period %q: %w", name, err)
	}
	tiers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[tierRow])
	if err != nil {
		return nil, fmt.Errorf("listing tiers of period %q: %w", name, err)
	}

	p := period.New(name)
	for _, row := range prices {
		p.SetUnitPrice(product.Product(row.Product), row.UnitPrice)
	}
	for _, row := range tiers {
		p.SetDiscount(product.Product(row.Product), row.Threshold, row.Rate)
	}
	return p, nil
}

// List returns the names of all stored periods.
func (r *PeriodRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listPeriodNamesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing periods: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing periods: %w", err)
	}
	return names, nil
}

// Upsert stores p, replacing any prices and tiers previously stored under
// the same name.
func (r *PeriodRepository) Upsert(ctx context.Context, p *period.Period) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	name := p.Name()
	for _, stmt := range []string{upsertPeriodSQL, deletePeriodPricesSQL, deletePeriodTiersSQL} {
		if _, err = tx.Exec(ctx, stmt, name); err != nil {
			return fmt.Errorf("upserting period %q: %w", name, err)
		}
	}

	for _, prod := range product.All() {
		if price, ok := p.UnitPrice(prod); ok {
			if _, err = tx.Exec(ctx, insertPeriodPriceSQL, name, string(prod), price); err != nil {
				return fmt.Errorf("inserting price of %s: %w", prod, err)
			}
		}
		for _, t := range p.Tiers(prod) {
			if _, err = tx.Exec(ctx, insertPeriodTierSQL, name, string(prod), t.Threshold, t.Rate); err != nil {
				return fmt.Errorf("inserting tier of %s: %w", prod, err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
