package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/ledger"
)

// ValuationService is the read-side engine behind the summary endpoints.
type ValuationService interface {
	Summary(ctx context.Context, positions []domain.Position) (domain.PortfolioSummary, error)
	Holdings(ctx context.Context, positions []domain.Position) ([]domain.AggregatedHolding, error)
}

// Handler provides the portfolio HTTP endpoints.
type Handler struct {
	ledger    *ledger.Service
	valuation ValuationService
}

// NewHandler creates a new API handler.
func NewHandler(ledgerSvc *ledger.Service, valuationSvc ValuationService) *Handler {
	return &Handler{ledger: ledgerSvc, valuation: valuationSvc}
}

type purchaseRequest struct {
	UserID         int64            `json:"userId"`
	Symbol         string           `json:"symbol"`
	AssetClass     string           `json:"assetClass"`
	Quantity       decimal.Decimal  `json:"quantity"`
	InvestedAmount decimal.Decimal  `json:"investedAmount"`
	Currency       string           `json:"currency"`
	PlatformID     *int64           `json:"platformId"`
	StrategyTag    *string          `json:"strategyTag"`
	UnitPrice      *decimal.Decimal `json:"unitPrice"`
}

// CreatePosition handles POST /api/v1/positions.
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	position, err := h.ledger.RecordPurchase(r.Context(), ledger.PurchaseInput{
		UserID:            req.UserID,
		Symbol:            req.Symbol,
		AssetClass:        req.AssetClass,
		Quantity:          req.Quantity,
		InvestedAmount:    req.InvestedAmount,
		Currency:          req.Currency,
		PlatformID:        req.PlatformID,
		StrategyTag:       req.StrategyTag,
		ProvidedUnitPrice: req.UnitPrice,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		slog.Error("failed to record purchase", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, position)
}

// ListPositions handles GET /api/v1/positions.
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	filters := ledger.Filters{Symbol: r.URL.Query().Get("symbol")}
	if raw := r.URL.Query().Get("asset_class"); raw != "" {
		class, err := domain.ParseAssetClass(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid asset_class")
			return
		}
		filters.AssetClass = class
	}

	positions, err := h.ledger.ListPositions(r.Context(), userID, filters)
	if err != nil {
		slog.Error("failed to list positions", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// GetSummary handles GET /api/v1/portfolio/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	positions, err := h.ledger.ListPositions(r.Context(), userID, ledger.Filters{})
	if err != nil {
		slog.Error("failed to list positions for summary", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary, err := h.valuation.Summary(r.Context(), positions)
	if err != nil {
		slog.Error("failed to compute summary", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetHoldings handles GET /api/v1/portfolio/holdings.
func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	positions, err := h.ledger.ListPositions(r.Context(), userID, ledger.Filters{})
	if err != nil {
		slog.Error("failed to list positions for holdings", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	holdings, err := h.valuation.Holdings(r.Context(), positions)
	if err != nil {
		slog.Error("failed to aggregate holdings", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return 0, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
