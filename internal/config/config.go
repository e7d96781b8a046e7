package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL            string
	HTTPPort               string
	AdminAPIKey            string
	BaseCurrency           string
	CoinGeckoURL           string
	CoinGeckoRetryDelay    time.Duration
	CoinGeckoRetryMax      int
	QuoteAPIURL            string
	QuoteAPIKey            string
	ProviderMinInterval    time.Duration
	PriceCacheTTL          time.Duration
	NegativeCacheTTL       time.Duration
	ValuationTimeout       time.Duration
	CatalogRefreshInterval time.Duration
	SpreadsheetID          string
	GoogleCredentialsJSON  string
	ExportPath             string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:            envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:               envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:            envOrDefault("ADMIN_API_KEY", ""),
		BaseCurrency:           envOrDefault("BASE_CURRENCY", "USD"),
		CoinGeckoURL:           envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoRetryDelay:    envOrDefaultDuration("COINGECKO_RETRY_DELAY", 6*time.Second),
		CoinGeckoRetryMax:      envOrDefaultInt("COINGECKO_RETRY_MAX", 5),
		QuoteAPIURL:            envOrDefault("QUOTEAPI_URL", "https://api.quoteapi.dev"),
		QuoteAPIKey:            envOrDefault("QUOTEAPI_KEY", ""),
		ProviderMinInterval:    envOrDefaultDuration("PROVIDER_MIN_INTERVAL", 1200*time.Millisecond),
		PriceCacheTTL:          envOrDefaultDuration("PRICE_CACHE_TTL", 5*time.Minute),
		NegativeCacheTTL:       envOrDefaultDuration("NEGATIVE_CACHE_TTL", 1*time.Minute),
		ValuationTimeout:       envOrDefaultDuration("VALUATION_TIMEOUT", 30*time.Second),
		CatalogRefreshInterval: envOrDefaultDuration("CATALOG_REFRESH_INTERVAL", 24*time.Hour),
		SpreadsheetID:          envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON:  envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		ExportPath:             envOrDefault("EXPORT_PATH", "portfolio.xlsx"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
