package collector

import (
	"context"
	"fmt"
	"time"

	"AhrSentinel/internal/model"
)

// OKXFetcher reads the BTC-USDT last trade price from OKX.
type OKXFetcher struct {
	src *source
}

// NewOKXFetcher creates an OKX ticker fetcher.
func NewOKXFetcher(baseURL, proxyURL string, timeout time.Duration) *OKXFetcher {
	return &OKXFetcher{src: newSource("okx", baseURL, proxyURL, timeout)}
}

func (f *OKXFetcher) Name() string { return "okx" }

func (f *OKXFetcher) FetchSpotPrice(ctx context.Context) (float64, error) {
	var result struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			Last flexFloat `json:"last"`
		} `json:"data"`
	}
	query := map[string]string{"instId": "BTC-USDT"}
	if err := f.src.getJSON(ctx, "/api/v5/market/ticker", query, nil, &result); err != nil {
		return 0, err
	}
	if result.Code != "0" {
		return 0, fmt.Errorf("okx: %w: api error %s: %s", model.ErrFetch, result.Code, result.Msg)
	}
	if len(result.Data) == 0 || !(result.Data[0].Last > 0) {
		return 0, fmt.Errorf("okx: %w: no ticker data", model.ErrFetch)
	}
	return float64(result.Data[0].Last), nil
}
