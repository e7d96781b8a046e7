package domain

import "github.com/shopspring/decimal"

const (
	// amountPlaces is the display precision for currency amounts.
	amountPlaces = 2
	// unitPricePlaces is the precision for per-unit prices.
	unitPricePlaces = 6
)

// priceTolerance is the relative tolerance used when reconciling a
// caller-supplied price against a computed one. Upstream clients may submit
// rounded or slightly stale prices, so exact equality is too strict.
var priceTolerance = decimal.NewFromFloat(0.01)

// RoundAmount rounds a currency amount to 2 decimal places, half-up.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountPlaces)
}

// RoundUnitPrice rounds a per-unit price to 6 decimal places, half-up.
func RoundUnitPrice(d decimal.Decimal) decimal.Decimal {
	return d.Round(unitPricePlaces)
}

// WithinPriceTolerance reports whether b deviates from a by at most 1% of a.
// A zero reference only matches an exactly-zero candidate.
func WithinPriceTolerance(a, b decimal.Decimal) bool {
	if a.IsZero() {
		return b.IsZero()
	}
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(a.Abs().Mul(priceTolerance))
}

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// SafePercent returns part/whole as a percentage, zero when whole is zero.
func SafePercent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
