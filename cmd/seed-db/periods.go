package main

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

type periodJSON struct {
	Name   string                     `json:"name"`
	Prices map[string]decimal.Decimal `json:"prices"`
	Tiers  []struct {
		Product   string          `json:"product"`
		Threshold decimal.Decimal `json:"threshold"`
		Rate      decimal.Decimal `json:"rate"`
	} `json:"tiers"`
}

// parsePeriods decodes the seed file into periods, rejecting unknown
// products and out-of-range tiers before anything reaches the database.
func parsePeriods(data []byte) ([]*period.Period, error) {
	var raw []periodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	out := make([]*period.Period, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			return nil, errors.New("period without name")
		}
		p := period.New(r.Name)
		for name, price := range r.Prices {
			prod, err := product.Parse(name)
			if err != nil {
				return nil, errors.Wrapf(err, "period %s", r.Name)
			}
			if price.IsNegative() {
				return nil, errors.Errorf("period %s: negative price for %s", r.Name, prod)
			}
			p.SetUnitPrice(prod, price)
		}
		for _, t := range r.Tiers {
			prod, err := product.Parse(t.Product)
			if err != nil {
				return nil, errors.Wrapf(err, "period %s", r.Name)
			}
			if t.Threshold.IsNegative() || t.Rate.IsNegative() || t.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
				return nil, errors.Errorf("period %s: invalid tier %s/%s for %s", r.Name, t.Threshold, t.Rate, prod)
			}
			p.SetDiscount(prod, t.Threshold, t.Rate)
		}
		out = append(out, p)
	}
	return out, nil
}
