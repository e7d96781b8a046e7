package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/ledger"
)

type mockLister struct {
	positions []domain.Position
	err       error
}

func (m *mockLister) ListPositions(_ context.Context, _ int64, _ ledger.Filters) ([]domain.Position, error) {
	return m.positions, m.err
}

type mockValuer struct {
	summary  domain.PortfolioSummary
	holdings []domain.AggregatedHolding
}

func (m *mockValuer) Summary(_ context.Context, _ []domain.Position) (domain.PortfolioSummary, error) {
	return m.summary, nil
}

func (m *mockValuer) Holdings(_ context.Context, _ []domain.Position) ([]domain.AggregatedHolding, error) {
	return m.holdings, nil
}

type captureWriter struct {
	reports []Report
	err     error
}

func (w *captureWriter) Write(_ context.Context, report Report) error {
	w.reports = append(w.reports, report)
	return w.err
}

func testReport() Report {
	price := decimal.NewFromInt(90000)
	pos := domain.Position{
		ID:              1,
		UserID:          7,
		Symbol:          "BTC",
		AssetClass:      domain.AssetClassCrypto,
		Quantity:        decimal.NewFromInt(2),
		InvestedAmount:  decimal.NewFromInt(120000),
		AverageUnitCost: decimal.NewFromInt(60000),
		Currency:        "USD",
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	val := domain.ValuationResult{
		CurrentUnitPrice: &price,
		CurrentValue:     decimal.NewFromInt(180000),
		GainLoss:         decimal.NewFromInt(60000),
		ROIPercentage:    decimal.NewFromInt(50),
		HoldingDays:      100,
	}
	return Report{
		UserID:      7,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Summary: domain.PortfolioSummary{
			Positions:          []domain.PositionValuation{{Position: pos, Valuation: val}},
			TotalInvested:      decimal.NewFromInt(120000),
			TotalCurrentValue:  decimal.NewFromInt(180000),
			TotalGainLoss:      decimal.NewFromInt(60000),
			TotalROIPercentage: decimal.NewFromInt(50),
			Allocation: []domain.AllocationSlice{
				{AssetClass: domain.AssetClassCrypto, CurrentValue: decimal.NewFromInt(180000), Percentage: decimal.NewFromInt(100)},
			},
		},
		Holdings: []domain.AggregatedHolding{
			{
				Symbol:        "BTC",
				AssetClass:    domain.AssetClassCrypto,
				TotalQuantity: decimal.NewFromInt(2),
				TotalInvested: decimal.NewFromInt(120000),
				AveragePrice:  decimal.NewFromInt(60000),
				Valuation:     val,
				Purchases:     []domain.Purchase{{PositionID: 1}},
			},
		},
	}
}

func TestExportWritesToAllDestinations(t *testing.T) {
	first := &captureWriter{}
	second := &captureWriter{}
	svc := NewService(&mockLister{}, &mockValuer{}, first, second)

	if err := svc.Export(context.Background(), 7); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if len(first.reports) != 1 || len(second.reports) != 1 {
		t.Errorf("writer calls = %d/%d, want 1/1", len(first.reports), len(second.reports))
	}
	if first.reports[0].UserID != 7 {
		t.Errorf("report user = %d, want 7", first.reports[0].UserID)
	}
}

func TestExportStopsOnWriterFailure(t *testing.T) {
	first := &captureWriter{err: errors.New("sheets down")}
	second := &captureWriter{}
	svc := NewService(&mockLister{}, &mockValuer{}, first, second)

	if err := svc.Export(context.Background(), 7); err == nil {
		t.Fatal("Export should propagate writer failure")
	}
	if len(second.reports) != 0 {
		t.Error("second writer should not run after the first fails")
	}
}

func TestExportListFailure(t *testing.T) {
	svc := NewService(&mockLister{err: errors.New("db down")}, &mockValuer{}, &captureWriter{})

	if err := svc.Export(context.Background(), 7); err == nil {
		t.Fatal("Export should propagate listing failure")
	}
}

func TestBuildWorkbook(t *testing.T) {
	report := testReport()

	f, err := BuildWorkbook(report)
	if err != nil {
		t.Fatalf("BuildWorkbook returned error: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Positions", "Holdings", "Allocation"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %s missing (idx=%d, err=%v)", sheet, idx, err)
		}
	}

	symbol, err := f.GetCellValue("Positions", "B2")
	if err != nil {
		t.Fatalf("reading positions cell: %v", err)
	}
	if symbol != "BTC" {
		t.Errorf("Positions!B2 = %q, want BTC", symbol)
	}

	alloc, err := f.GetCellValue("Allocation", "A2")
	if err != nil {
		t.Fatalf("reading allocation cell: %v", err)
	}
	if alloc != "crypto" {
		t.Errorf("Allocation!A2 = %q, want crypto", alloc)
	}
}

func TestWorkbookWriterSavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	w := NewWorkbookWriter(path)

	if err := w.Write(context.Background(), testReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	value, err := f.GetCellValue("Holdings", "A2")
	if err != nil {
		t.Fatalf("reading holdings cell: %v", err)
	}
	if value != "BTC" {
		t.Errorf("Holdings!A2 = %q, want BTC", value)
	}
}
