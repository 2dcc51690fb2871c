package collector

import (
	"context"
	"fmt"
	"time"

	"AhrSentinel/internal/model"
)

// CoinGlassFetcher reads the published Ahr999 index from CoinGlass.
type CoinGlassFetcher struct {
	src    *source
	apiKey string
}

// NewCoinGlassFetcher creates a CoinGlass fetcher. It needs an API key.
func NewCoinGlassFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *CoinGlassFetcher {
	return &CoinGlassFetcher{src: newSource("coinglass", baseURL, proxyURL, timeout), apiKey: apiKey}
}

func (f *CoinGlassFetcher) Name() string { return "coinglass" }

func (f *CoinGlassFetcher) FetchIndex(ctx context.Context) (float64, error) {
	var result struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			Date   string    `json:"date"`
			Ahr999 flexFloat `json:"ahr999"`
		} `json:"data"`
	}
	headers := map[string]string{"coinglassApiKeys": f.apiKey}
	if err := f.src.getJSON(ctx, "/indicator/ahr999", nil, headers, &result); err != nil {
		return 0, err
	}
	if result.Code != "" && result.Code != "0" {
		return 0, fmt.Errorf("coinglass: %w: api error %s: %s", model.ErrFetch, result.Code, result.Msg)
	}
	if len(result.Data) == 0 {
		return 0, fmt.Errorf("coinglass: %w: no data", model.ErrFetch)
	}
	v := float64(result.Data[len(result.Data)-1].Ahr999)
	if !(v > 0) {
		return 0, fmt.Errorf("coinglass: %w: non-positive index %v", model.ErrFetch, v)
	}
	return v, nil
}
