package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSpotPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin": {"usd": 55000.25}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 0, 0, 1)
	price, err := client.SpotPrice(context.Background(), "bitcoin", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(decimal.NewFromFloat(55000.25)) {
		t.Errorf("price = %s, want 55000.25", price)
	}
}

func TestSpotPriceUnknownID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 0, 0, 1)
	_, err := client.SpotPrice(context.Background(), "nope", "usd")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSpotPriceRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"bitcoin": {"usd": 55000}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 0, 10*time.Millisecond, 2)
	price, err := client.SpotPrice(context.Background(), "bitcoin", "usd")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(55000)) {
		t.Errorf("price = %s, want 55000", price)
	}
}

func TestSearchRanking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins": [
			{"id": "bitcoin", "name": "Bitcoin", "symbol": "btc", "market_cap_rank": 1},
			{"id": "bitcoin-cash", "name": "Bitcoin Cash", "symbol": "bch", "market_cap_rank": 20},
			{"id": "obscure-btc", "name": "Obscure", "symbol": "obtc", "market_cap_rank": 0}
		]}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 0, 0, 1)
	matches, err := client.Search(context.Background(), "btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	if matches[0].ProviderID != "bitcoin" || matches[0].MarketWeight != 1 {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[2].MarketWeight != 0 {
		t.Errorf("unranked coin weight = %v, want 0", matches[2].MarketWeight)
	}
}

func TestSpotPriceContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1 * time.Second)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	client := NewCoinGeckoClient(server.URL, 0, 0, 1)
	_, err := client.SpotPrice(ctx, "bitcoin", "usd")
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
