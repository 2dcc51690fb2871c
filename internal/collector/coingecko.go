package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"AhrSentinel/internal/model"

	"golang.org/x/time/rate"
)

// CoinGeckoFetcher reads BTC daily closes from the CoinGecko market_chart API.
type CoinGeckoFetcher struct {
	src     *source
	apiKey  string
	limiter *rate.Limiter
}

// NewCoinGeckoFetcher creates a CoinGecko fetcher limited to rpm requests per
// minute. apiKey is optional (demo tier key).
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, rpm int) *CoinGeckoFetcher {
	if rpm <= 0 {
		rpm = 10
	}
	return &CoinGeckoFetcher{
		src:     newSource("coingecko", baseURL, proxyURL, timeout),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 2),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// FetchDailyCloses returns the normalized daily series. CoinGecko may return
// several points for the current day; the last one wins.
func (f *CoinGeckoFetcher) FetchDailyCloses(ctx context.Context, lookbackDays int) (model.PriceSeries, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return model.PriceSeries{}, fmt.Errorf("coingecko: %w: rate limit wait: %w", model.ErrFetch, err)
	}

	var result struct {
		Prices [][2]float64 `json:"prices"`
	}
	query := map[string]string{
		"vs_currency": "usd",
		"days":        strconv.Itoa(lookbackDays),
		"interval":    "daily",
	}
	var headers map[string]string
	if f.apiKey != "" {
		headers = map[string]string{"x-cg-demo-api-key": f.apiKey}
	}
	if err := f.src.getJSON(ctx, "/coins/bitcoin/market_chart", query, headers, &result); err != nil {
		return model.PriceSeries{}, err
	}
	if len(result.Prices) == 0 {
		return model.PriceSeries{}, fmt.Errorf("coingecko: %w: empty price list", model.ErrFetch)
	}

	raw := make([]model.PricePoint, 0, len(result.Prices))
	for _, p := range result.Prices {
		raw = append(raw, model.PricePoint{Date: time.UnixMilli(int64(p[0])), Price: p[1]})
	}
	return model.NewPriceSeries(raw), nil
}

// FetchPulse reads the aggregated BTC price with 24h change and volume from
// the simple/price endpoint.
func (f *CoinGeckoFetcher) FetchPulse(ctx context.Context) (model.MarketPulse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return model.MarketPulse{}, fmt.Errorf("coingecko: %w: rate limit wait: %w", model.ErrFetch, err)
	}

	var result struct {
		Bitcoin struct {
			USD       flexFloat `json:"usd"`
			Volume24h flexFloat `json:"usd_24h_vol"`
			Change24h flexFloat `json:"usd_24h_change"`
		} `json:"bitcoin"`
	}
	query := map[string]string{
		"ids":                 "bitcoin",
		"vs_currencies":       "usd",
		"include_24hr_vol":    "true",
		"include_24hr_change": "true",
	}
	var headers map[string]string
	if f.apiKey != "" {
		headers = map[string]string{"x-cg-demo-api-key": f.apiKey}
	}
	if err := f.src.getJSON(ctx, "/simple/price", query, headers, &result); err != nil {
		return model.MarketPulse{}, err
	}
	if !(result.Bitcoin.USD > 0) {
		return model.MarketPulse{}, fmt.Errorf("coingecko: %w: no bitcoin price", model.ErrFetch)
	}
	return model.MarketPulse{
		ReferencePrice: float64(result.Bitcoin.USD),
		Change24h:      float64(result.Bitcoin.Change24h),
		Volume24h:      float64(result.Bitcoin.Volume24h),
		Source:         "CoinGecko aggregate",
	}, nil
}
