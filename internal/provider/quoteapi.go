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

// QuoteAPIClient fetches equity, ETF and bond prices from the market-data
// gateway. The gateway multiplexes upstream exchange feeds behind a flat
// quote/search JSON API.
type QuoteAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewQuoteAPIClient creates a market-data gateway client. minInterval spaces
// outgoing calls to respect the gateway quota.
func NewQuoteAPIClient(baseURL, apiKey string, minInterval time.Duration) *QuoteAPIClient {
	return &QuoteAPIClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    NewRateLimiter(minInterval),
	}
}

// SpotPrice implements Client via GET /v1/quote.
func (c *QuoteAPIClient) SpotPrice(ctx context.Context, providerID, currency string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/v1/quote?symbol=%s&currency=%s",
		c.baseURL, url.QueryEscape(providerID), url.QueryEscape(strings.ToLower(currency)))

	body, err := c.fetch(ctx, u)
	if err != nil {
		return decimal.Zero, err
	}

	var raw struct {
		Symbol string      `json:"symbol"`
		Price  json.Number `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return decimal.Zero, fmt.Errorf("parsing quote response: %w", err)
	}
	if raw.Price == "" {
		return decimal.Zero, fmt.Errorf("quote for %q has no price: %w", providerID, ErrNotFound)
	}

	price, err := decimal.NewFromString(raw.Price.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing quote price %q: %w", raw.Price, err)
	}
	return price, nil
}

// Search implements Client via GET /v1/search. The gateway reports a
// market_weight per result, used directly as the ranking signal.
func (c *QuoteAPIClient) Search(ctx context.Context, symbol string) ([]CandidateMatch, error) {
	u := fmt.Sprintf("%s/v1/search?q=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Results []struct {
			Symbol       string  `json:"symbol"`
			Name         string  `json:"name"`
			MarketWeight float64 `json:"market_weight"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	matches := make([]CandidateMatch, 0, len(raw.Results))
	for _, r := range raw.Results {
		matches = append(matches, CandidateMatch{
			ProviderID:   r.Symbol,
			Name:         r.Name,
			Symbol:       strings.ToUpper(r.Symbol),
			MarketWeight: r.MarketWeight,
		})
	}
	return matches, nil
}

func (c *QuoteAPIClient) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading quote response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("quote HTTP 404: %w", ErrNotFound)
	default:
		return nil, fmt.Errorf("quote HTTP %d: %s", resp.StatusCode, string(body))
	}
}
