package valuation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/domain"
)

// yearDays is the annualization horizon.
const yearDays = 365

// computeMetrics derives the valuation metrics for one cost basis against a
// resolved unit price. A nil price means resolution failed: the conservative
// convention is zero current value and a full notional loss, so an
// unpriceable asset is visible rather than silently flattering the totals.
func computeMetrics(quantity, invested decimal.Decimal, unitPrice *decimal.Decimal, createdAt time.Time, now time.Time) domain.ValuationResult {
	holdingDays := domain.Position{CreatedAt: createdAt}.HoldingDays(now)

	if unitPrice == nil {
		return domain.ValuationResult{
			CurrentValue:  decimal.Zero,
			GainLoss:      domain.RoundAmount(invested.Neg()),
			ROIPercentage: decimal.NewFromInt(-100),
			HoldingDays:   holdingDays,
			AnnualizedROI: decimal.Zero,
		}
	}

	currentValue := domain.RoundAmount(quantity.Mul(*unitPrice))
	gainLoss := currentValue.Sub(invested)
	roi := domain.RoundAmount(domain.SafePercent(gainLoss, invested))

	return domain.ValuationResult{
		CurrentUnitPrice: unitPrice,
		CurrentValue:     currentValue,
		GainLoss:         domain.RoundAmount(gainLoss),
		ROIPercentage:    roi,
		HoldingDays:      holdingDays,
		AnnualizedROI:    annualizedROI(gainLoss, invested, holdingDays),
	}
}

// annualizedROI compounds the return to a 365-day-equivalent rate. Negative
// returns are not extrapolated, and holdings shorter than a day are treated
// as one full day rather than annualized from hours.
func annualizedROI(gainLoss, invested decimal.Decimal, holdingDays int) decimal.Decimal {
	if holdingDays < 1 || !gainLoss.IsPositive() || !invested.IsPositive() {
		return decimal.Zero
	}

	// Display metric: float64 precision is sufficient for the compound
	// extrapolation, and decimal has no fractional exponent.
	ratio, _ := gainLoss.Div(invested).Float64()
	annualized := (math.Pow(1+ratio, yearDays/float64(holdingDays)) - 1) * 100
	if math.IsInf(annualized, 0) || math.IsNaN(annualized) {
		return decimal.Zero
	}
	return domain.RoundAmount(decimal.NewFromFloat(annualized))
}
