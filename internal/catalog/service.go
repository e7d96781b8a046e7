package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/provider"
)

// Service maintains the persisted symbol mapping catalog by re-validating
// stored mappings against provider search results.
type Service struct {
	repo      Repository
	providers map[domain.AssetClass]provider.Client
}

// NewService creates a catalog maintenance Service.
func NewService(repo Repository, providers map[domain.AssetClass]provider.Client) *Service {
	return &Service{repo: repo, providers: providers}
}

// Refresh re-checks every stored mapping against its provider's search
// results and updates provider ids that have drifted. Per-mapping failures
// are logged and skipped so one bad symbol cannot stall the rest.
func (s *Service) Refresh(ctx context.Context) error {
	mappings, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("loading mappings: %w", err)
	}

	for _, m := range mappings {
		client, ok := s.providers[m.AssetClass]
		if !ok {
			slog.Warn("catalog: no provider for asset class", "assetClass", m.AssetClass, "symbol", m.Symbol)
			continue
		}

		best, ok, err := BestMatch(ctx, client, m.Symbol)
		if err != nil {
			slog.Warn("catalog: search failed", "symbol", m.Symbol, "error", err)
			continue
		}
		if !ok {
			slog.Warn("catalog: no candidates for symbol", "symbol", m.Symbol)
			continue
		}

		if best.ProviderID == m.ProviderID {
			continue
		}

		slog.Info("catalog: provider id drifted",
			"symbol", m.Symbol, "old", m.ProviderID, "new", best.ProviderID)
		m.ProviderID = best.ProviderID
		if err := s.repo.Put(ctx, m); err != nil {
			slog.Warn("catalog: update failed", "symbol", m.Symbol, "error", err)
		}
	}

	return nil
}

// BestMatch runs a provider search and returns the highest-market-weight
// candidate. Search order breaks weight ties, so the provider's own ranking
// wins among equally weighted results.
func BestMatch(ctx context.Context, client provider.Client, symbol string) (provider.CandidateMatch, bool, error) {
	matches, err := client.Search(ctx, symbol)
	if err != nil {
		return provider.CandidateMatch{}, false, err
	}
	if len(matches) == 0 {
		return provider.CandidateMatch{}, false, nil
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.MarketWeight > best.MarketWeight {
			best = m
		}
	}
	return best, true, nil
}
