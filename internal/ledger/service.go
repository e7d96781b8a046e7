package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/domain"
)

// PurchaseInput carries one buy lot to record. ProvidedUnitPrice is
// advisory: the persisted average unit cost is always derived from
// InvestedAmount/Quantity when the two disagree beyond tolerance.
type PurchaseInput struct {
	UserID            int64
	Symbol            string
	AssetClass        string
	Quantity          decimal.Decimal
	InvestedAmount    decimal.Decimal
	Currency          string
	PlatformID        *int64
	StrategyTag       *string
	ProvidedUnitPrice *decimal.Decimal
}

// Service owns the position ledger: each grouping key maps to at most one
// open position, and repeated buys merge into it by weighted-average
// cost-basis recomputation.
type Service struct {
	repo            Repository
	locks           *keyLocks
	defaultCurrency string
}

// NewService creates a ledger Service.
func NewService(repo Repository, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		locks:           newKeyLocks(),
		defaultCurrency: defaultCurrency,
	}
}

// RecordPurchase validates and records a buy lot, merging it into the
// existing position for the grouping key or creating a new one. Validation
// failures abort before any storage access; storage failures surface
// wrapped and leave no partial state.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (domain.Position, error) {
	symbol, err := domain.NormalizeSymbol(in.Symbol)
	if err != nil {
		return domain.Position{}, err
	}
	class, err := domain.ParseAssetClass(in.AssetClass)
	if err != nil {
		return domain.Position{}, err
	}
	if in.UserID <= 0 {
		return domain.Position{}, domain.NewValidationError("user_id", "user id is required")
	}
	if !in.Quantity.IsPositive() {
		return domain.Position{}, domain.NewValidationError("quantity", "quantity must be greater than zero")
	}
	if !in.InvestedAmount.IsPositive() {
		return domain.Position{}, domain.NewValidationError("invested_amount", "invested amount must be greater than zero")
	}
	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	unitPrice := s.reconcileUnitPrice(symbol, in.Quantity, in.InvestedAmount, in.ProvidedUnitPrice)

	key := domain.GroupingKey{
		UserID:      in.UserID,
		Symbol:      symbol,
		PlatformID:  in.PlatformID,
		StrategyTag: in.StrategyTag,
	}

	unlock := s.locks.acquire(key)
	defer unlock()

	existing, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		merged := stack(existing, in.Quantity, in.InvestedAmount)
		saved, err := s.repo.Save(ctx, merged)
		if err != nil {
			return domain.Position{}, fmt.Errorf("saving merged position: %w", err)
		}
		return saved, nil

	case errors.Is(err, ErrNotFound):
		saved, err := s.repo.Save(ctx, domain.Position{
			UserID:          in.UserID,
			Symbol:          symbol,
			AssetClass:      class,
			PlatformID:      in.PlatformID,
			StrategyTag:     in.StrategyTag,
			Quantity:        in.Quantity,
			InvestedAmount:  in.InvestedAmount,
			AverageUnitCost: unitPrice,
			Currency:        currency,
		})
		if err != nil {
			return domain.Position{}, fmt.Errorf("saving new position: %w", err)
		}
		return saved, nil

	default:
		return domain.Position{}, fmt.Errorf("looking up position: %w", err)
	}
}

// ListPositions returns the user's positions for valuation and display.
func (s *Service) ListPositions(ctx context.Context, userID int64, f Filters) ([]domain.Position, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("user_id", "user id is required")
	}
	positions, err := s.repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	return positions, nil
}

// reconcileUnitPrice returns the unit price to persist. The computed price
// wins whenever the caller-supplied one deviates beyond tolerance; advisory
// prices are never trusted over the cost-basis arithmetic.
func (s *Service) reconcileUnitPrice(symbol string, quantity, invested decimal.Decimal, provided *decimal.Decimal) decimal.Decimal {
	calculated := domain.RoundUnitPrice(invested.Div(quantity))
	if provided == nil {
		return calculated
	}
	if domain.WithinPriceTolerance(calculated, *provided) {
		return domain.RoundUnitPrice(*provided)
	}
	slog.Warn("ledger: provided unit price discarded",
		"symbol", symbol, "provided", provided.String(), "calculated", calculated.String())
	return calculated
}

// stack merges a buy lot into an existing position: quantities and invested
// amounts add, the average unit cost is recomputed from the merged totals.
func stack(p domain.Position, quantity, invested decimal.Decimal) domain.Position {
	p.Quantity = p.Quantity.Add(quantity)
	p.InvestedAmount = p.InvestedAmount.Add(invested)
	p.AverageUnitCost = domain.RoundUnitPrice(p.InvestedAmount.Div(p.Quantity))
	return p
}
