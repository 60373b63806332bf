package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// AggregatorAPISource queries an external HTTP price aggregator
// (1inch-style GET {base}/price/v1.1/{chainId}?tokens=...) with bearer
// auth. Failures and non-positive prices map to ErrUnavailable.
type AggregatorAPISource struct {
	SourceName string
	BaseURL    string
	APIKey     string
	Tier       int
	HTTPClient *http.Client
}

func (a *AggregatorAPISource) Name() string   { return a.SourceName }
func (a *AggregatorAPISource) TrustTier() int { return a.Tier }

type tokenPrice struct {
	Price decimal.Decimal `json:"price"`
}

// Fetch requests the current price for token on chainID.
func (a *AggregatorAPISource) Fetch(ctx context.Context, token string, chainID int64) (Quote, error) {
	if a == nil || a.HTTPClient == nil {
		return Quote{}, fmt.Errorf("%w: http client not set", ErrUnavailable)
	}

	query := url.Values{}
	query.Set("tokens", token)
	endpoint := fmt.Sprintf("%s/price/v1.1/%d?%s", a.BaseURL, chainID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Quote{}, fmt.Errorf("%w: aggregator status %d", ErrUnavailable, resp.StatusCode)
	}

	var prices map[string]tokenPrice
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return Quote{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	tp, ok := prices[token]
	if !ok || !tp.Price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: no usable price for %s", ErrUnavailable, token)
	}

	return Quote{
		Token:      token,
		ChainID:    chainID,
		Price:      tp.Price,
		ObservedAt: time.Now().UTC(),
		Source:     a.SourceName,
		TrustTier:  a.Tier,
	}, nil
}
