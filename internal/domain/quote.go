package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an ephemeral price observation for one instrument. It lives in
// the short-TTL resolution cache and is never persisted by this subsystem.
type Quote struct {
	Symbol     string          `json:"symbol"`
	ProviderID string          `json:"providerId"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Currency   string          `json:"currency"`
	ObservedAt time.Time       `json:"observedAt"`
}
