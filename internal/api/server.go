package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/folioworks/folio/internal/ledger"
)

// CatalogRefresher triggers an on-demand catalog maintenance pass.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, ledgerSvc *ledger.Service, valuationSvc ValuationService, refresher CatalogRefresher, adminAPIKey string) *http.Server {
	handler := NewHandler(ledgerSvc, valuationSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/positions", handler.CreatePosition)
	mux.HandleFunc("GET /api/v1/positions", handler.ListPositions)
	mux.HandleFunc("GET /api/v1/portfolio/summary", handler.GetSummary)
	mux.HandleFunc("GET /api/v1/portfolio/holdings", handler.GetHoldings)

	refreshHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := refresher.Refresh(r.Context()); err != nil {
			slog.Error("catalog refresh failed", "error", err)
			writeError(w, http.StatusInternalServerError, "catalog refresh failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/catalog/refresh", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/catalog/refresh", refreshHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
