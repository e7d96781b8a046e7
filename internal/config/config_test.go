package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"DATABASE_URL", "COINGECKO_URL", "HTTP_PORT", "BASE_CURRENCY", "PRICE_CACHE_TTL", "COINGECKO_RETRY_MAX"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.CoinGeckoURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGeckoURL = %q, want default", cfg.CoinGeckoURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.BaseCurrency != "USD" {
		t.Errorf("BaseCurrency = %q, want USD", cfg.BaseCurrency)
	}
	if cfg.CoinGeckoRetryMax != 5 {
		t.Errorf("CoinGeckoRetryMax = %d, want 5", cfg.CoinGeckoRetryMax)
	}
	if cfg.PriceCacheTTL != 5*time.Minute {
		t.Errorf("PriceCacheTTL = %v, want 5m", cfg.PriceCacheTTL)
	}
	if cfg.NegativeCacheTTL != 1*time.Minute {
		t.Errorf("NegativeCacheTTL = %v, want 1m", cfg.NegativeCacheTTL)
	}
	if cfg.CatalogRefreshInterval != 24*time.Hour {
		t.Errorf("CatalogRefreshInterval = %v, want 24h", cfg.CatalogRefreshInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BASE_CURRENCY", "EUR")
	t.Setenv("PROVIDER_MIN_INTERVAL", "2s")
	t.Setenv("COINGECKO_RETRY_MAX", "10")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.BaseCurrency != "EUR" {
		t.Errorf("BaseCurrency = %q, want EUR", cfg.BaseCurrency)
	}
	if cfg.ProviderMinInterval != 2*time.Second {
		t.Errorf("ProviderMinInterval = %v, want 2s", cfg.ProviderMinInterval)
	}
	if cfg.CoinGeckoRetryMax != 10 {
		t.Errorf("CoinGeckoRetryMax = %d, want 10", cfg.CoinGeckoRetryMax)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("COINGECKO_RETRY_MAX", "not-a-number")
	t.Setenv("PRICE_CACHE_TTL", "invalid-duration")

	cfg := Load()

	if cfg.CoinGeckoRetryMax != 5 {
		t.Errorf("CoinGeckoRetryMax = %d, want default 5 on invalid input", cfg.CoinGeckoRetryMax)
	}
	if cfg.PriceCacheTTL != 5*time.Minute {
		t.Errorf("PriceCacheTTL = %v, want default 5m on invalid input", cfg.PriceCacheTTL)
	}
}
