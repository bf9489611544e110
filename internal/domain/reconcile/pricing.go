package reconcile

import "github.com/shopspring/decimal"

// VAT pass-through factors applied before the margin. The 1.045 and 1.262
// multipliers are fixed empirical constants for the 4% and 21% rates and are
// used exactly as given, never re-derived from the rate.
var (
	vatFactorReduced  = decimal.RequireFromString("1.045")
	vatFactorStandard = decimal.RequireFromString("1.262")

	hundred = decimal.NewFromInt(100)
)

// SalePrice computes the retail price for an invoice cost:
// round(base / ((100 - margin) / 100), 2), where base is the cost adjusted by
// the VAT factor for rates 4 and 21 and the cost unchanged otherwise.
func SalePrice(cost decimal.Decimal, vatRate int, marginPercent int) decimal.Decimal {
	base := cost
	switch vatRate {
	case 4:
		base = cost.Mul(vatFactorReduced)
	case 21:
		base = cost.Mul(vatFactorStandard)
	}

	divisor := hundred.Sub(decimal.NewFromInt(int64(marginPercent))).Div(hundred)
	return base.Div(divisor).Round(2)
}
