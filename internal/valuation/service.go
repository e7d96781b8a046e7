package valuation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/domain"
)

// PriceSource resolves a current unit price for one instrument.
type PriceSource interface {
	Resolve(ctx context.Context, symbol string, class domain.AssetClass, currency string) (domain.Quote, error)
}

// Service computes per-position metrics and portfolio aggregates. Price
// lookups fan out concurrently, one per distinct instrument; a slow or
// failing lookup degrades only its own positions, never the batch.
type Service struct {
	prices       PriceSource
	baseCurrency string
	timeout      time.Duration
	now          func() time.Time
}

// NewService creates a valuation Service. timeout bounds the whole price
// resolution batch; zero disables the bound.
func NewService(prices PriceSource, baseCurrency string, timeout time.Duration) *Service {
	return &Service{
		prices:       prices,
		baseCurrency: baseCurrency,
		timeout:      timeout,
		now:          time.Now,
	}
}

// instrument identifies one distinct price lookup.
type instrument struct {
	symbol string
	class  domain.AssetClass
}

// resolvePrices fetches prices for every distinct instrument concurrently.
// The returned map holds a nil price for instruments whose resolution
// failed or missed the batch deadline.
func (s *Service) resolvePrices(ctx context.Context, instruments []instrument) map[instrument]*decimal.Decimal {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results := make([]*decimal.Decimal, len(instruments))
	var wg sync.WaitGroup
	for i, inst := range instruments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quote, err := s.prices.Resolve(ctx, inst.symbol, inst.class, s.baseCurrency)
			if err != nil {
				return
			}
			price := quote.UnitPrice
			results[i] = &price
		}()
	}
	wg.Wait()

	prices := make(map[instrument]*decimal.Decimal, len(instruments))
	for i, inst := range instruments {
		prices[inst] = results[i]
	}
	return prices
}

// Summary values every position and folds the results into portfolio
// totals, asset-class allocation and performance leaders. The result set is
// always complete: unresolvable positions carry the failure convention.
func (s *Service) Summary(ctx context.Context, positions []domain.Position) (domain.PortfolioSummary, error) {
	instruments := lo.Uniq(lo.Map(positions, func(p domain.Position, _ int) instrument {
		return instrument{symbol: p.Symbol, class: p.AssetClass}
	}))
	prices := s.resolvePrices(ctx, instruments)

	now := s.now()
	valuations := lo.Map(positions, func(p domain.Position, _ int) domain.PositionValuation {
		price := prices[instrument{symbol: p.Symbol, class: p.AssetClass}]
		return domain.PositionValuation{
			Position:  p,
			Valuation: computeMetrics(p.Quantity, p.InvestedAmount, price, p.CreatedAt, now),
		}
	})

	summary := domain.PortfolioSummary{Positions: valuations}
	for _, v := range valuations {
		summary.TotalInvested = summary.TotalInvested.Add(v.Position.InvestedAmount)
		summary.TotalCurrentValue = summary.TotalCurrentValue.Add(v.Valuation.CurrentValue)

		switch {
		case v.Valuation.GainLoss.IsPositive():
			summary.ProfitableCount++
		case v.Valuation.GainLoss.IsNegative():
			summary.LosingCount++
		}
		if v.Valuation.CurrentUnitPrice == nil {
			summary.UnpricedCount++
		}

		// Strict comparisons keep the first-encountered position on ties.
		roi := v.Valuation.ROIPercentage
		if summary.BestPerformer == nil || roi.GreaterThan(summary.BestPerformer.ROIPercentage) {
			summary.BestPerformer = &domain.PerformerRef{
				PositionID: v.Position.ID, Symbol: v.Position.Symbol, ROIPercentage: roi,
			}
		}
		if summary.WorstPerformer == nil || roi.LessThan(summary.WorstPerformer.ROIPercentage) {
			summary.WorstPerformer = &domain.PerformerRef{
				PositionID: v.Position.ID, Symbol: v.Position.Symbol, ROIPercentage: roi,
			}
		}
	}

	summary.TotalGainLoss = domain.RoundAmount(summary.TotalCurrentValue.Sub(summary.TotalInvested))
	summary.TotalROIPercentage = domain.RoundAmount(domain.SafePercent(summary.TotalGainLoss, summary.TotalInvested))
	summary.Allocation = allocate(valuations, summary.TotalCurrentValue)

	return summary, nil
}

// allocate folds current value per asset class, in the stable class order.
func allocate(valuations []domain.PositionValuation, totalValue decimal.Decimal) []domain.AllocationSlice {
	byClass := lo.GroupBy(valuations, func(v domain.PositionValuation) domain.AssetClass {
		return v.Position.AssetClass
	})

	var slices []domain.AllocationSlice
	for _, class := range domain.AssetClasses {
		group, ok := byClass[class]
		if !ok {
			continue
		}
		value := lo.Reduce(group, func(acc decimal.Decimal, v domain.PositionValuation, _ int) decimal.Decimal {
			return acc.Add(v.Valuation.CurrentValue)
		}, decimal.Zero)
		slices = append(slices, domain.AllocationSlice{
			AssetClass:   class,
			CurrentValue: value,
			Percentage:   domain.RoundAmount(domain.SafePercent(value, totalValue)),
		})
	}
	return slices
}

// Holdings consolidates every lot of each symbol, across grouping keys,
// into one investor-facing record. ROI is computed against the aggregate
// cost basis, not summed across lots, and one price resolution serves all
// lots of a symbol. The result is deterministic for a given input.
func (s *Service) Holdings(ctx context.Context, positions []domain.Position) ([]domain.AggregatedHolding, error) {
	bySymbol := lo.GroupBy(positions, func(p domain.Position) string { return p.Symbol })

	symbols := lo.Keys(bySymbol)
	sort.Strings(symbols)

	instruments := lo.Map(symbols, func(sym string, _ int) instrument {
		return instrument{symbol: sym, class: bySymbol[sym][0].AssetClass}
	})
	prices := s.resolvePrices(ctx, instruments)

	now := s.now()
	holdings := make([]domain.AggregatedHolding, 0, len(symbols))
	for _, sym := range symbols {
		group := bySymbol[sym]

		totalQuantity := decimal.Zero
		totalInvested := decimal.Zero
		earliest := group[0].CreatedAt
		purchases := make([]domain.Purchase, 0, len(group))
		for _, p := range group {
			totalQuantity = totalQuantity.Add(p.Quantity)
			totalInvested = totalInvested.Add(p.InvestedAmount)
			if p.CreatedAt.Before(earliest) {
				earliest = p.CreatedAt
			}
			purchases = append(purchases, domain.Purchase{
				PositionID:     p.ID,
				PlatformID:     p.PlatformID,
				StrategyTag:    p.StrategyTag,
				Quantity:       p.Quantity,
				InvestedAmount: p.InvestedAmount,
				UnitCost:       p.AverageUnitCost,
			})
		}

		class := group[0].AssetClass
		price := prices[instrument{symbol: sym, class: class}]
		holdings = append(holdings, domain.AggregatedHolding{
			Symbol:        sym,
			AssetClass:    class,
			TotalQuantity: totalQuantity,
			TotalInvested: totalInvested,
			AveragePrice:  domain.RoundUnitPrice(domain.SafeDiv(totalInvested, totalQuantity)),
			Valuation:     computeMetrics(totalQuantity, totalInvested, price, earliest, now),
			Purchases:     purchases,
		})
	}
	return holdings, nil
}
