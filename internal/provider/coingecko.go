package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CoinGeckoClient fetches crypto prices from the CoinGecko API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	retryDelay time.Duration
	maxRetries int
}

// NewCoinGeckoClient creates a CoinGecko API client. minInterval spaces
// outgoing calls; retryDelay/maxRetries govern backoff on rate-limit
// responses.
func NewCoinGeckoClient(baseURL string, minInterval, retryDelay time.Duration, maxRetries int) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    NewRateLimiter(minInterval),
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

// SpotPrice implements Client using the /simple/price endpoint.
func (c *CoinGeckoClient) SpotPrice(ctx context.Context, providerID, currency string) (decimal.Decimal, error) {
	cur := strings.ToLower(currency)
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(providerID), url.QueryEscape(cur))

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return decimal.Zero, err
	}

	// Parse: {"bitcoin":{"usd":45000.12}}
	var raw map[string]map[string]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return decimal.Zero, fmt.Errorf("parsing CoinGecko price response: %w", err)
	}

	prices, ok := raw[providerID]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko id %q: %w", providerID, ErrNotFound)
	}
	num, ok := prices[cur]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko id %q has no %s price: %w", providerID, cur, ErrNotFound)
	}

	price, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing CoinGecko price %q: %w", num, err)
	}
	return price, nil
}

// Search implements Client using the /search endpoint. Candidates are
// weighted by inverse market-cap rank, so rank 1 carries the highest weight.
func (c *CoinGeckoClient) Search(ctx context.Context, symbol string) ([]CandidateMatch, error) {
	u := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Coins []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing CoinGecko search response: %w", err)
	}

	matches := make([]CandidateMatch, 0, len(raw.Coins))
	for _, coin := range raw.Coins {
		var weight float64
		if coin.MarketCapRank > 0 {
			weight = 1 / float64(coin.MarketCapRank)
		}
		matches = append(matches, CandidateMatch{
			ProviderID:   coin.ID,
			Name:         coin.Name,
			Symbol:       strings.ToUpper(coin.Symbol),
			MarketWeight: weight,
		})
	}
	return matches, nil
}

func (c *CoinGeckoClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.retryDelay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CoinGecko request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("CoinGecko HTTP 404: %w", ErrNotFound)
		}

		return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
