package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetPositions  = "Positions"
	sheetHoldings   = "Holdings"
	sheetAllocation = "Allocation"
)

// WorkbookWriter writes a report to an xlsx file.
type WorkbookWriter struct {
	path string
}

// NewWorkbookWriter creates a WorkbookWriter that saves to the given path.
func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

// Write builds the workbook and saves it to disk.
func (w *WorkbookWriter) Write(_ context.Context, report Report) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", w.path, err)
	}
	return nil
}

// BuildWorkbook renders a report into a three-sheet xlsx workbook.
func BuildWorkbook(report Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writePositionsSheet(f, report); err != nil {
		return nil, err
	}
	if err := writeHoldingsSheet(f, report); err != nil {
		return nil, err
	}
	if err := writeAllocationSheet(f, report); err != nil {
		return nil, err
	}

	// The default sheet is replaced by Positions.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheetPositions)
	if err != nil {
		return nil, fmt.Errorf("locating positions sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	return f, nil
}

func writePositionsSheet(f *excelize.File, report Report) error {
	if _, err := f.NewSheet(sheetPositions); err != nil {
		return fmt.Errorf("creating positions sheet: %w", err)
	}

	header := []any{
		"ID", "Symbol", "Asset Class", "Platform", "Strategy",
		"Quantity", "Invested", "Avg Cost", "Current Price",
		"Current Value", "Gain/Loss", "ROI %", "Annualized ROI %", "Days Held",
	}
	if err := writeHeaderRow(f, sheetPositions, header); err != nil {
		return err
	}

	for i, pv := range report.Summary.Positions {
		p := pv.Position
		v := pv.Valuation
		row := []any{
			p.ID, p.Symbol, string(p.AssetClass),
			int64Cell(p.PlatformID), strCell(p.StrategyTag),
			toFloat(p.Quantity), toFloat(p.InvestedAmount), toFloat(p.AverageUnitCost),
			ptrFloat(v.CurrentUnitPrice),
			toFloat(v.CurrentValue), toFloat(v.GainLoss), toFloat(v.ROIPercentage),
			toFloat(v.AnnualizedROI), v.HoldingDays,
		}
		if err := setRow(f, sheetPositions, i+2, row); err != nil {
			return err
		}
	}

	totalsRow := len(report.Summary.Positions) + 2
	totals := []any{
		"", "TOTAL", "", "", "",
		"", toFloat(report.Summary.TotalInvested), "", "",
		toFloat(report.Summary.TotalCurrentValue),
		toFloat(report.Summary.TotalGainLoss),
		toFloat(report.Summary.TotalROIPercentage),
		"", "",
	}
	return setRow(f, sheetPositions, totalsRow, totals)
}

func writeHoldingsSheet(f *excelize.File, report Report) error {
	if _, err := f.NewSheet(sheetHoldings); err != nil {
		return fmt.Errorf("creating holdings sheet: %w", err)
	}

	header := []any{
		"Symbol", "Asset Class", "Total Quantity", "Total Invested",
		"Avg Price", "Current Value", "Gain/Loss", "ROI %", "Purchases",
	}
	if err := writeHeaderRow(f, sheetHoldings, header); err != nil {
		return err
	}

	for i, h := range report.Holdings {
		row := []any{
			h.Symbol, string(h.AssetClass),
			toFloat(h.TotalQuantity), toFloat(h.TotalInvested), toFloat(h.AveragePrice),
			toFloat(h.Valuation.CurrentValue), toFloat(h.Valuation.GainLoss),
			toFloat(h.Valuation.ROIPercentage),
			len(h.Purchases),
		}
		if err := setRow(f, sheetHoldings, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAllocationSheet(f *excelize.File, report Report) error {
	if _, err := f.NewSheet(sheetAllocation); err != nil {
		return fmt.Errorf("creating allocation sheet: %w", err)
	}

	header := []any{"Asset Class", "Current Value", "Percentage"}
	if err := writeHeaderRow(f, sheetAllocation, header); err != nil {
		return err
	}

	for i, slice := range report.Summary.Allocation {
		row := []any{
			string(slice.AssetClass),
			toFloat(slice.CurrentValue),
			toFloat(slice.Percentage),
		}
		if err := setRow(f, sheetAllocation, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, header []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("creating header style for %s: %w", sheet, err)
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("computing header range for %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return fmt.Errorf("styling header for %s: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing row %d cell for %s: %w", row, sheet, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}

func int64Cell(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func strCell(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}
