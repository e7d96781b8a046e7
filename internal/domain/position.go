package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a user's cumulative holding in one instrument under one
// grouping key. Repeated purchases for the same key merge into a single row
// via weighted-average cost-basis recomputation; individual lot identity is
// not preserved here.
type Position struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Symbol          string          `json:"symbol"`
	AssetClass      AssetClass      `json:"assetClass"`
	PlatformID      *int64          `json:"platformId,omitempty"`
	StrategyTag     *string         `json:"strategyTag,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	InvestedAmount  decimal.Decimal `json:"investedAmount"`
	AverageUnitCost decimal.Decimal `json:"averageUnitCost"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// GroupingKey identifies the positions that stack together. A nil platform
// or strategy is a distinct value of its own, not a wildcard.
type GroupingKey struct {
	UserID      int64
	Symbol      string
	PlatformID  *int64
	StrategyTag *string
}

// Key returns the grouping key of the position.
func (p Position) Key() GroupingKey {
	return GroupingKey{
		UserID:      p.UserID,
		Symbol:      p.Symbol,
		PlatformID:  p.PlatformID,
		StrategyTag: p.StrategyTag,
	}
}

// HoldingDays returns the number of whole days the position has been held,
// never less than 1 so annualization cannot divide by zero.
func (p Position) HoldingDays(now time.Time) int {
	days := int(now.Sub(p.CreatedAt).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
