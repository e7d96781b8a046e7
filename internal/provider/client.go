package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the provider has no data for the requested id.
var ErrNotFound = errors.New("provider: instrument not found")

// CandidateMatch is one result of a provider symbol search. MarketWeight is
// the provider's ranking signal; higher means a more significant instrument.
type CandidateMatch struct {
	ProviderID   string  `json:"providerId"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	MarketWeight float64 `json:"marketWeight"`
}

// Client is the capability exposed by one asset-class price provider.
// Transport, authentication and retry toward the remote API are the
// client's concern; callers only see a price or an error.
type Client interface {
	// SpotPrice returns the current unit price of the instrument the
	// provider knows as providerID, in the given currency.
	SpotPrice(ctx context.Context, providerID, currency string) (decimal.Decimal, error)
	// Search looks up candidate instruments for a raw symbol.
	Search(ctx context.Context, symbol string) ([]CandidateMatch, error)
}
