package collector

import (
	"context"
	"fmt"
	"time"

	"AhrSentinel/internal/model"
)

// CoinbaseFetcher reads the BTC-USD spot price from the Coinbase public API.
type CoinbaseFetcher struct {
	src *source
}

// NewCoinbaseFetcher creates a Coinbase spot fetcher.
func NewCoinbaseFetcher(baseURL, proxyURL string, timeout time.Duration) *CoinbaseFetcher {
	return &CoinbaseFetcher{src: newSource("coinbase", baseURL, proxyURL, timeout)}
}

func (f *CoinbaseFetcher) Name() string { return "coinbase" }

func (f *CoinbaseFetcher) FetchSpotPrice(ctx context.Context) (float64, error) {
	var result struct {
		Data struct {
			Amount flexFloat `json:"amount"`
		} `json:"data"`
	}
	if err := f.src.getJSON(ctx, "/v2/prices/BTC-USD/spot", nil, nil, &result); err != nil {
		return 0, err
	}
	price := float64(result.Data.Amount)
	if !(price > 0) {
		return 0, fmt.Errorf("coinbase: %w: non-positive price %v", model.ErrFetch, price)
	}
	return price, nil
}
