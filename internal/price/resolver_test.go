package price

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/catalog"
	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/provider"
)

type mockProvider struct {
	spot       decimal.Decimal
	spotErr    error
	spotCalls  int
	matches    []provider.CandidateMatch
	searchErr  error
	searchCalls int
}

func (m *mockProvider) SpotPrice(_ context.Context, _, _ string) (decimal.Decimal, error) {
	m.spotCalls++
	return m.spot, m.spotErr
}

func (m *mockProvider) Search(_ context.Context, _ string) ([]provider.CandidateMatch, error) {
	m.searchCalls++
	return m.matches, m.searchErr
}

type mockCatalog struct {
	mappings map[string]catalog.Mapping
	getErr   error
	puts     []catalog.Mapping
}

func (m *mockCatalog) Get(_ context.Context, symbol string, class domain.AssetClass) (catalog.Mapping, error) {
	if m.getErr != nil {
		return catalog.Mapping{}, m.getErr
	}
	if mp, ok := m.mappings[symbol+":"+string(class)]; ok {
		return mp, nil
	}
	return catalog.Mapping{}, catalog.ErrNotFound
}

func (m *mockCatalog) Put(_ context.Context, mp catalog.Mapping) error {
	m.puts = append(m.puts, mp)
	return nil
}

func (m *mockCatalog) All(_ context.Context) ([]catalog.Mapping, error) {
	return nil, nil
}

func newTestResolver(p provider.Client, cat catalog.Repository) *Resolver {
	return NewResolver(
		map[domain.AssetClass]provider.Client{domain.AssetClassCrypto: p},
		cat,
		NewCache(time.Minute, time.Minute),
	)
}

func TestResolveStaticMapping(t *testing.T) {
	p := &mockProvider{spot: decimal.NewFromInt(90000)}
	cat := &mockCatalog{}

	r := newTestResolver(p, cat)
	quote, err := r.Resolve(context.Background(), "BTC", domain.AssetClassCrypto, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.ProviderID != "bitcoin" {
		t.Errorf("ProviderID = %q, want bitcoin (static table)", quote.ProviderID)
	}
	if p.searchCalls != 0 {
		t.Errorf("search called %d times for a static symbol", p.searchCalls)
	}
}

func TestResolveCatalogMapping(t *testing.T) {
	p := &mockProvider{spot: decimal.NewFromFloat(1.5)}
	cat := &mockCatalog{mappings: map[string]catalog.Mapping{
		"OBSCURE:crypto": {Symbol: "OBSCURE", AssetClass: domain.AssetClassCrypto, ProviderID: "obscure-coin"},
	}}

	r := newTestResolver(p, cat)
	quote, err := r.Resolve(context.Background(), "OBSCURE", domain.AssetClassCrypto, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.ProviderID != "obscure-coin" {
		t.Errorf("ProviderID = %q, want obscure-coin (catalog)", quote.ProviderID)
	}
	if p.searchCalls != 0 {
		t.Error("search should not run when the catalog has a mapping")
	}
}

func TestResolveSearchFallbackWritesBack(t *testing.T) {
	p := &mockProvider{
		spot: decimal.NewFromFloat(0.5),
		matches: []provider.CandidateMatch{
			{ProviderID: "minor-token", MarketWeight: 0.01},
			{ProviderID: "major-token", MarketWeight: 0.9},
		},
	}
	cat := &mockCatalog{}

	r := newTestResolver(p, cat)
	quote, err := r.Resolve(context.Background(), "NEWSYM", domain.AssetClassCrypto, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.ProviderID != "major-token" {
		t.Errorf("ProviderID = %q, want highest-weight candidate", quote.ProviderID)
	}
	if len(cat.puts) != 1 || cat.puts[0].ProviderID != "major-token" {
		t.Errorf("catalog write-back = %+v", cat.puts)
	}
}

func TestResolveExhaustionReturnsErrNoPrice(t *testing.T) {
	p := &mockProvider{searchErr: errors.New("provider down")}
	cat := &mockCatalog{}

	r := newTestResolver(p, cat)
	_, err := r.Resolve(context.Background(), "UNKNOWN", domain.AssetClassCrypto, "USD")
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("error = %v, want ErrNoPrice", err)
	}

	// The failure is negatively cached: a second resolve must not retry the
	// provider within the negative TTL.
	searchesBefore := p.searchCalls
	_, err = r.Resolve(context.Background(), "UNKNOWN", domain.AssetClassCrypto, "USD")
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("second error = %v, want ErrNoPrice", err)
	}
	if p.searchCalls != searchesBefore {
		t.Error("negative cache did not suppress repeat search")
	}
}

func TestResolveSpotFailureAbsorbed(t *testing.T) {
	p := &mockProvider{spotErr: errors.New("timeout")}
	cat := &mockCatalog{}

	r := newTestResolver(p, cat)
	_, err := r.Resolve(context.Background(), "BTC", domain.AssetClassCrypto, "USD")
	if !errors.Is(err, ErrNoPrice) {
		t.Errorf("error = %v, want ErrNoPrice", err)
	}
}

func TestResolveCacheHit(t *testing.T) {
	p := &mockProvider{spot: decimal.NewFromInt(90000)}
	cat := &mockCatalog{}

	r := newTestResolver(p, cat)
	if _, err := r.Resolve(context.Background(), "BTC", domain.AssetClassCrypto, "USD"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "BTC", domain.AssetClassCrypto, "USD"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if p.spotCalls != 1 {
		t.Errorf("spot fetched %d times, want 1 (cache hit)", p.spotCalls)
	}
}

func TestResolveUnboundAssetClass(t *testing.T) {
	r := newTestResolver(&mockProvider{}, &mockCatalog{})
	_, err := r.Resolve(context.Background(), "HOUSE1", domain.AssetClassRealEstate, "USD")
	if !errors.Is(err, ErrNoPrice) {
		t.Errorf("error = %v, want ErrNoPrice for unbound class", err)
	}
}

func TestResolveCatalogErrorFallsThroughToSearch(t *testing.T) {
	p := &mockProvider{
		spot:    decimal.NewFromFloat(2),
		matches: []provider.CandidateMatch{{ProviderID: "found-anyway", MarketWeight: 1}},
	}
	cat := &mockCatalog{getErr: errors.New("db unreachable")}

	r := newTestResolver(p, cat)
	quote, err := r.Resolve(context.Background(), "SYMX", domain.AssetClassCrypto, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.ProviderID != "found-anyway" {
		t.Errorf("ProviderID = %q, want search result despite catalog failure", quote.ProviderID)
	}
}
