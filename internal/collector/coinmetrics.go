package collector

import (
	"context"
	"fmt"
	"time"

	"AhrSentinel/internal/model"
)

// CoinMetricsFetcher reads the BTC MVRV ratio (CapMVRVCur) from the Coin
// Metrics community API.
type CoinMetricsFetcher struct {
	src *source
}

// NewCoinMetricsFetcher creates an MVRV fetcher.
func NewCoinMetricsFetcher(baseURL, proxyURL string, timeout time.Duration) *CoinMetricsFetcher {
	return &CoinMetricsFetcher{src: newSource("coinmetrics", baseURL, proxyURL, timeout)}
}

func (f *CoinMetricsFetcher) Name() string { return "coinmetrics" }

func (f *CoinMetricsFetcher) FetchOnchainMetric(ctx context.Context) (model.ConfirmationSignal, error) {
	sig := model.ConfirmationSignal{Source: "Coin Metrics MVRV (CapMVRVCur)"}

	var result struct {
		Data []struct {
			Time string    `json:"time"`
			MVRV flexFloat `json:"CapMVRVCur"`
		} `json:"data"`
	}
	query := map[string]string{
		"assets":      "btc",
		"metrics":     "CapMVRVCur",
		"frequency":   "1d",
		"page_size":   "1",
		"paging_from": "end",
	}
	if err := f.src.getJSON(ctx, "/timeseries/asset-metrics", query, nil, &result); err != nil {
		return sig, err
	}
	if len(result.Data) == 0 {
		return sig, fmt.Errorf("coinmetrics: %w: no data", model.ErrFetch)
	}

	latest := result.Data[len(result.Data)-1]
	v := float64(latest.MVRV)
	sig.Value = &v
	if t, err := time.Parse(time.RFC3339Nano, latest.Time); err == nil {
		day := model.CalendarDay(t)
		sig.AsOf = &day
	}
	return sig, nil
}
