package domain

import "github.com/shopspring/decimal"

// ValuationResult holds the metrics computed for one position at request
// time. CurrentUnitPrice is nil when price resolution failed; the position
// then carries the conservative worst-case convention (zero value, -100%
// ROI) instead of being dropped from the batch.
type ValuationResult struct {
	CurrentUnitPrice *decimal.Decimal `json:"currentUnitPrice,omitempty"`
	CurrentValue     decimal.Decimal  `json:"currentValue"`
	GainLoss         decimal.Decimal  `json:"gainLoss"`
	ROIPercentage    decimal.Decimal  `json:"roiPercentage"`
	HoldingDays      int              `json:"holdingDays"`
	AnnualizedROI    decimal.Decimal  `json:"annualizedRoi"`
}

// PositionValuation pairs a position with its computed metrics.
type PositionValuation struct {
	Position  Position        `json:"position"`
	Valuation ValuationResult `json:"valuation"`
}

// AllocationSlice is the portion of the portfolio held in one asset class.
type AllocationSlice struct {
	AssetClass   AssetClass      `json:"assetClass"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// PerformerRef identifies the best or worst position by ROI.
type PerformerRef struct {
	PositionID    int64           `json:"positionId"`
	Symbol        string          `json:"symbol"`
	ROIPercentage decimal.Decimal `json:"roiPercentage"`
}

// PortfolioSummary is the portfolio-level aggregate over all positions.
// It is always complete: positions whose price could not be resolved appear
// with the failure convention rather than being omitted.
type PortfolioSummary struct {
	Positions          []PositionValuation `json:"positions"`
	TotalInvested      decimal.Decimal     `json:"totalInvested"`
	TotalCurrentValue  decimal.Decimal     `json:"totalCurrentValue"`
	TotalGainLoss      decimal.Decimal     `json:"totalGainLoss"`
	TotalROIPercentage decimal.Decimal     `json:"totalRoiPercentage"`
	Allocation         []AllocationSlice   `json:"allocation"`
	BestPerformer      *PerformerRef       `json:"bestPerformer,omitempty"`
	WorstPerformer     *PerformerRef       `json:"worstPerformer,omitempty"`
	ProfitableCount    int                 `json:"profitableCount"`
	LosingCount        int                 `json:"losingCount"`
	UnpricedCount      int                 `json:"unpricedCount"`
}

// Purchase records one contributing position inside an aggregated holding,
// preserved for provenance in submission order.
type Purchase struct {
	PositionID     int64           `json:"positionId"`
	PlatformID     *int64          `json:"platformId,omitempty"`
	StrategyTag    *string         `json:"strategyTag,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	InvestedAmount decimal.Decimal `json:"investedAmount"`
	UnitCost       decimal.Decimal `json:"unitCost"`
}

// AggregatedHolding consolidates every lot of one symbol, across grouping
// keys, into a single investor-facing record. Valuation is computed against
// the aggregate totals, not by summing per-position ROIs.
type AggregatedHolding struct {
	Symbol        string          `json:"symbol"`
	AssetClass    AssetClass      `json:"assetClass"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	Valuation     ValuationResult `json:"valuation"`
	Purchases     []Purchase      `json:"purchases"`
}
