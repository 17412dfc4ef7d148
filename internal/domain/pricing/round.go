package pricing

import "github.com/shopspring/decimal"

var (
	ten       = decimal.NewFromInt(10)
	five      = decimal.NewFromInt(5)
	lowerHalf = decimal.RequireFromString("2.5")
	upperHalf = decimal.RequireFromString("7.5")
)

// RoundTo5 rounds amount to the nearest multiple of 5, half up.
func RoundTo5(amount decimal.Decimal) decimal.Decimal {
	base := amount.Div(ten).Floor().Mul(ten)
	r := amount.Sub(base)
	switch {
	case r.LessThan(lowerHalf):
		return base
	case r.LessThan(upperHalf):
		return base.Add(five)
	default:
		return base.Add(ten)
	}
}
