package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsWriter implements ReportWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures required sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, report Report) error {
	if err := w.ensureSheets(ctx, "SUMMARY", "HOLDINGS", "ALLOCATION"); err != nil {
		return err
	}

	summaryValues := buildSummaryValues(report)
	holdingsValues := buildHoldingsValues(report)
	allocationValues := buildAllocationValues(report)

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{"SUMMARY!A:N", "HOLDINGS!A:I", "ALLOCATION!A:C"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: "SUMMARY!A1", Values: summaryValues},
				{Range: "HOLDINGS!A1", Values: holdingsValues},
				{Range: "ALLOCATION!A1", Values: allocationValues},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// buildSummaryValues builds the SUMMARY sheet: one row per valued position,
// followed by a totals row.
func buildSummaryValues(report Report) [][]any {
	data := make([][]any, 0, len(report.Summary.Positions)+3)
	data = append(data, []any{
		"Generated", report.GeneratedAt.Format("02.01.2006 15:04"), "User", report.UserID,
	})
	data = append(data, []any{
		"ID", "Symbol", "Asset Class", "Quantity", "Invested", "Avg Cost",
		"Current Price", "Current Value", "Gain/Loss", "ROI %",
		"Annualized ROI %", "Days Held",
	})

	for _, pv := range report.Summary.Positions {
		p := pv.Position
		v := pv.Valuation
		data = append(data, []any{
			p.ID, p.Symbol, string(p.AssetClass),
			toFloat(p.Quantity), toFloat(p.InvestedAmount), toFloat(p.AverageUnitCost),
			ptrFloat(v.CurrentUnitPrice), toFloat(v.CurrentValue),
			toFloat(v.GainLoss), toFloat(v.ROIPercentage),
			toFloat(v.AnnualizedROI), v.HoldingDays,
		})
	}

	data = append(data, []any{
		"", "TOTAL", "",
		"", toFloat(report.Summary.TotalInvested), "",
		"", toFloat(report.Summary.TotalCurrentValue),
		toFloat(report.Summary.TotalGainLoss),
		toFloat(report.Summary.TotalROIPercentage),
		"", "",
	})
	return data
}

// buildHoldingsValues builds the HOLDINGS sheet data.
func buildHoldingsValues(report Report) [][]any {
	data := make([][]any, 0, len(report.Holdings)+1)
	data = append(data, []any{
		"Symbol", "Asset Class", "Total Quantity", "Total Invested",
		"Avg Price", "Current Value", "Gain/Loss", "ROI %", "Purchases",
	})

	for _, h := range report.Holdings {
		data = append(data, []any{
			h.Symbol, string(h.AssetClass),
			toFloat(h.TotalQuantity), toFloat(h.TotalInvested), toFloat(h.AveragePrice),
			toFloat(h.Valuation.CurrentValue), toFloat(h.Valuation.GainLoss),
			toFloat(h.Valuation.ROIPercentage),
			len(h.Purchases),
		})
	}
	return data
}

// buildAllocationValues builds the ALLOCATION sheet data.
func buildAllocationValues(report Report) [][]any {
	data := [][]any{
		{"Asset Class", "Current Value", "Percentage"},
	}
	for _, slice := range report.Summary.Allocation {
		data = append(data, []any{
			string(slice.AssetClass),
			toFloat(slice.CurrentValue),
			toFloat(slice.Percentage),
		})
	}
	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
