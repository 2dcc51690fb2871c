package collector

import (
	"context"

	"AhrSentinel/internal/model"
)

// SpotFetcher returns the current BTC price in USD.
type SpotFetcher interface {
	FetchSpotPrice(ctx context.Context) (float64, error)
	Name() string
}

// HistoryFetcher returns at least lookbackDays of daily closes ending near today.
type HistoryFetcher interface {
	FetchDailyCloses(ctx context.Context, lookbackDays int) (model.PriceSeries, error)
	Name() string
}

// OnchainFetcher returns the on-chain confirmation metric. Callers treat any
// error as an unavailable signal.
type OnchainFetcher interface {
	FetchOnchainMetric(ctx context.Context) (model.ConfirmationSignal, error)
	Name() string
}

// IndexFetcher returns an externally published Ahr999 value.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) (float64, error)
	Name() string
}

// PulseFetcher returns an aggregated reference price with 24h change and
// volume.
type PulseFetcher interface {
	FetchPulse(ctx context.Context) (model.MarketPulse, error)
	Name() string
}
