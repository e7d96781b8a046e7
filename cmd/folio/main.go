package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/catalog"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/database"
	"github.com/folioworks/folio/internal/domain"
	"github.com/folioworks/folio/internal/export"
	"github.com/folioworks/folio/internal/ledger"
	"github.com/folioworks/folio/internal/price"
	"github.com/folioworks/folio/internal/provider"
	"github.com/folioworks/folio/internal/valuation"
	"github.com/folioworks/folio/internal/worker"
	"github.com/folioworks/folio/migrations"
)

func main() {
	app := &cli.App{
		Name:  "folio",
		Usage: "portfolio position aggregation and valuation service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with background catalog maintenance",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "value a user's portfolio and export it once",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "user",
						Usage:    "user id to export",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "sheets",
						Usage: "also write to the configured Google spreadsheet",
					},
				},
				Action: runExport,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// deps wires the shared service graph used by both commands.
type deps struct {
	pool      *pgxpool.Pool
	ledgerSvc *ledger.Service
	valuation *valuation.Service
	catalog   *catalog.Service
	cfg       config.Config
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	coingecko := provider.NewCoinGeckoClient(
		cfg.CoinGeckoURL, cfg.ProviderMinInterval, cfg.CoinGeckoRetryDelay, cfg.CoinGeckoRetryMax)
	quoteAPI := provider.NewQuoteAPIClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey, cfg.ProviderMinInterval)

	providers := map[domain.AssetClass]provider.Client{
		domain.AssetClassCrypto: coingecko,
		domain.AssetClassEquity: quoteAPI,
		domain.AssetClassETF:    quoteAPI,
		domain.AssetClassBond:   quoteAPI,
		domain.AssetClassOther:  quoteAPI,
	}

	catalogRepo := catalog.NewPgRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, providers)

	cache := price.NewCache(cfg.PriceCacheTTL, cfg.NegativeCacheTTL)
	resolver := price.NewResolver(providers, catalogRepo, cache)

	ledgerSvc := ledger.NewService(ledger.NewPgRepository(pool), cfg.BaseCurrency)
	valuationSvc := valuation.NewService(resolver, cfg.BaseCurrency, cfg.ValuationTimeout)

	return &deps{
		pool:      pool,
		ledgerSvc: ledgerSvc,
		valuation: valuationSvc,
		catalog:   catalogSvc,
		cfg:       cfg,
	}, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.pool.Close()

	catalogWorker := worker.NewCatalogWorker(d.catalog, d.cfg.CatalogRefreshInterval)
	go catalogWorker.Run(ctx)

	if d.cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, catalog refresh endpoint is unprotected")
	}

	srv := api.NewServer(d.cfg.HTTPPort, d.ledgerSvc, d.valuation, d.catalog, d.cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", d.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.pool.Close()

	writers := []export.ReportWriter{export.NewWorkbookWriter(d.cfg.ExportPath)}

	if c.Bool("sheets") {
		if d.cfg.SpreadsheetID == "" || d.cfg.GoogleCredentialsJSON == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON are required for sheets export")
		}
		sheetsWriter, err := export.NewSheetsWriter(ctx, d.cfg.SpreadsheetID, d.cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sheetsWriter)
	}

	exportSvc := export.NewService(d.ledgerSvc, d.valuation, writers...)

	userID := c.Int64("user")
	if err := exportSvc.Export(ctx, userID); err != nil {
		return err
	}

	log.Printf("Exported portfolio for user %d to %s", userID, d.cfg.ExportPath)
	return nil
}
