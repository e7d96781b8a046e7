package price

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/folioworks/folio/internal/catalog"
	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/provider"
)

// ErrNoPrice indicates that every resolution step was exhausted without
// producing a price. It is the only error Resolve returns: I/O failures
// along the chain are logged and absorbed, never propagated.
var ErrNoPrice = errors.New("no price available")

// Resolver maps a symbol to a provider id through a layered strategy and
// fetches the spot price. Resolution order, first hit wins:
//
//  1. static in-process table (no I/O)
//  2. persisted mapping catalog
//  3. provider search, taking the highest-market-weight candidate
//
// Search hits are written back to the catalog so the next resolution stops
// at step 2. The catalog itself is slow-moving descriptive data refreshed
// over hours by the catalog worker; quotes live in the short-TTL cache.
type Resolver struct {
	providers map[domain.AssetClass]provider.Client
	catalog   catalog.Repository
	cache     *Cache
}

// NewResolver creates a price Resolver. The cache is injected so callers
// own its lifecycle and tests can substitute clocks.
func NewResolver(providers map[domain.AssetClass]provider.Client, cat catalog.Repository, cache *Cache) *Resolver {
	return &Resolver{
		providers: providers,
		catalog:   cat,
		cache:     cache,
	}
}

// Resolve returns the current unit price for symbol in the given currency,
// or ErrNoPrice when the chain is exhausted. Failures are cached negatively
// for a short period.
func (r *Resolver) Resolve(ctx context.Context, symbol string, class domain.AssetClass, currency string) (domain.Quote, error) {
	key := cacheKey(symbol, currency)
	switch quote, state := r.cache.get(key); state {
	case cacheHit:
		return quote, nil
	case cacheNegative:
		return domain.Quote{}, ErrNoPrice
	}

	client, ok := r.providers[class]
	if !ok {
		slog.Warn("price: no provider bound for asset class", "assetClass", class, "symbol", symbol)
		r.cache.setNegative(key)
		return domain.Quote{}, ErrNoPrice
	}

	providerID, ok := r.resolveProviderID(ctx, client, symbol, class)
	if !ok {
		r.cache.setNegative(key)
		return domain.Quote{}, ErrNoPrice
	}

	unitPrice, err := client.SpotPrice(ctx, providerID, currency)
	if err != nil {
		slog.Warn("price: spot price fetch failed",
			"symbol", symbol, "providerId", providerID, "error", err)
		r.cache.setNegative(key)
		return domain.Quote{}, ErrNoPrice
	}

	quote := domain.Quote{
		Symbol:     symbol,
		ProviderID: providerID,
		UnitPrice:  unitPrice,
		Currency:   currency,
		ObservedAt: time.Now(),
	}
	r.cache.set(key, quote)
	return quote, nil
}

// resolveProviderID walks the chain until a provider id is found.
func (r *Resolver) resolveProviderID(ctx context.Context, client provider.Client, symbol string, class domain.AssetClass) (string, bool) {
	if id, ok := staticLookup(symbol, class); ok {
		return id, true
	}

	mapping, err := r.catalog.Get(ctx, symbol, class)
	if err == nil {
		return mapping.ProviderID, true
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		// Catalog I/O failure: fall through to search rather than fail.
		slog.Warn("price: catalog lookup failed", "symbol", symbol, "error", err)
	}

	best, ok, err := catalog.BestMatch(ctx, client, symbol)
	if err != nil {
		slog.Warn("price: provider search failed", "symbol", symbol, "error", err)
		return "", false
	}
	if !ok {
		slog.Warn("price: no search candidates", "symbol", symbol)
		return "", false
	}

	// Remember the discovery; a write failure only costs a repeat search.
	if err := r.catalog.Put(ctx, catalog.Mapping{
		Symbol:     symbol,
		AssetClass: class,
		ProviderID: best.ProviderID,
	}); err != nil {
		slog.Warn("price: catalog write-back failed", "symbol", symbol, "error", err)
	}

	return best.ProviderID, true
}
