package export

import (
	"context"
	"fmt"
	"time"

	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/ledger"
)

// Report is a point-in-time portfolio export: the valued summary plus the
// symbol-level holdings it was derived from.
type Report struct {
	UserID      int64
	GeneratedAt time.Time
	Summary     domain.PortfolioSummary
	Holdings    []domain.AggregatedHolding
}

// PositionLister reads the stored positions for a user.
type PositionLister interface {
	ListPositions(ctx context.Context, userID int64, filters ledger.Filters) ([]domain.Position, error)
}

// Valuer produces the valued views of a position set.
type Valuer interface {
	Summary(ctx context.Context, positions []domain.Position) (domain.PortfolioSummary, error)
	Holdings(ctx context.Context, positions []domain.Position) ([]domain.AggregatedHolding, error)
}

// ReportWriter writes a report to a destination (xlsx file, Google Sheets).
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Service builds portfolio reports and delegates writing to one or more
// ReportWriters.
type Service struct {
	positions PositionLister
	valuer    Valuer
	writers   []ReportWriter
}

// NewService creates a new export Service.
func NewService(positions PositionLister, valuer Valuer, writers ...ReportWriter) *Service {
	return &Service{
		positions: positions,
		valuer:    valuer,
		writers:   writers,
	}
}

// Export values the user's portfolio and writes the report to every
// configured destination. The first writer failure aborts the rest.
func (s *Service) Export(ctx context.Context, userID int64) error {
	positions, err := s.positions.ListPositions(ctx, userID, ledger.Filters{})
	if err != nil {
		return fmt.Errorf("listing positions for export: %w", err)
	}

	summary, err := s.valuer.Summary(ctx, positions)
	if err != nil {
		return fmt.Errorf("valuing portfolio for export: %w", err)
	}

	holdings, err := s.valuer.Holdings(ctx, positions)
	if err != nil {
		return fmt.Errorf("aggregating holdings for export: %w", err)
	}

	report := Report{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
		Holdings:    holdings,
	}

	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}
