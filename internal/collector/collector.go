package collector

import (
	"context"
	"fmt"
	"time"

	"AhrSentinel/internal/config"
	"AhrSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing and
// counts calls per collaborator.
type MockFetcher struct {
	Price      float64
	SpotErr    error
	Closes     []float64 // daily closes ending yesterday; nil generates flat data
	HistoryErr error
	MVRV       *float64
	OnchainErr error
	Index      float64
	IndexErr   error
	Pulse      *model.MarketPulse // nil derives a flat pulse from Price
	PulseErr   error
	SpotCalls  int
	HistCalls  int
	ChainCalls int
	IndexCalls int
	PulseCalls int
	Today      time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSpotPrice(_ context.Context) (float64, error) {
	m.SpotCalls++
	if m.SpotErr != nil {
		return 0, m.SpotErr
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchDailyCloses(_ context.Context, days int) (model.PriceSeries, error) {
	m.HistCalls++
	if m.HistoryErr != nil {
		return model.PriceSeries{}, m.HistoryErr
	}
	closes := m.Closes
	if closes == nil {
		closes = generateMockCloses(m.Price, days)
	}
	today := m.Today
	if today.IsZero() {
		today = time.Now()
	}
	raw := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		raw[i] = model.PricePoint{Date: today.AddDate(0, 0, -(len(closes) - i)), Price: c}
	}
	return model.NewPriceSeries(raw), nil
}

func (m *MockFetcher) FetchOnchainMetric(_ context.Context) (model.ConfirmationSignal, error) {
	m.ChainCalls++
	sig := model.ConfirmationSignal{Source: "mock MVRV"}
	if m.OnchainErr != nil {
		return sig, m.OnchainErr
	}
	sig.Value = m.MVRV
	return sig, nil
}

func (m *MockFetcher) FetchIndex(_ context.Context) (float64, error) {
	m.IndexCalls++
	if m.IndexErr != nil {
		return 0, m.IndexErr
	}
	return m.Index, nil
}

func (m *MockFetcher) FetchPulse(_ context.Context) (model.MarketPulse, error) {
	m.PulseCalls++
	if m.PulseErr != nil {
		return model.MarketPulse{}, m.PulseErr
	}
	if m.Pulse != nil {
		return *m.Pulse, nil
	}
	return model.MarketPulse{ReferencePrice: m.Price, Source: "mock"}, nil
}

func generateMockCloses(basePrice float64, count int) []float64 {
	closes := make([]float64, count)
	for i := 0; i < count; i++ {
		closes[i] = basePrice * (1 + float64(i-count/2)*0.001)
	}
	return closes
}

// Collector bundles the external collaborators used by one advisory run.
// Index is nil unless a CoinGlass key is configured. Pulse may be nil.
type Collector struct {
	Spot         SpotFetcher
	History      HistoryFetcher
	Onchain      OnchainFetcher
	Index        IndexFetcher
	Pulse        PulseFetcher
	LookbackDays int
}

// NewCollector wires the live HTTP fetchers from configuration.
func NewCollector(cfg *config.Config) *Collector {
	ds := cfg.DataSource
	timeout := cfg.Timeout()
	gecko := NewCoinGeckoFetcher(ds.CoinGeckoURL, ds.CoinGeckoAPIKey, cfg.Proxy, timeout, ds.CoinGeckoRPM)
	c := &Collector{
		Spot: NewFallbackSpot(
			NewCoinbaseFetcher(ds.CoinbaseURL, cfg.Proxy, timeout),
			NewOKXFetcher(ds.OKXURL, cfg.Proxy, timeout),
		),
		History:      gecko,
		Onchain:      NewCoinMetricsFetcher(ds.CoinMetricsURL, cfg.Proxy, timeout),
		Pulse:        gecko,
		LookbackDays: ds.LookbackDays,
	}
	if ds.CoinGlassAPIKey != "" {
		c.Index = NewCoinGlassFetcher(ds.CoinGlassURL, ds.CoinGlassAPIKey, cfg.Proxy, timeout)
	}
	return c
}

// NewMockCollector wires every collaborator except Index to m.
func NewMockCollector(m *MockFetcher, lookbackDays int) *Collector {
	return &Collector{Spot: m, History: m, Onchain: m, Pulse: m, LookbackDays: lookbackDays}
}

// Describe lists the configured sources for startup logging.
func (c *Collector) Describe() string {
	s := fmt.Sprintf("spot=%s history=%s onchain=%s", c.Spot.Name(), c.History.Name(), c.Onchain.Name())
	if c.Index != nil {
		s += " index=" + c.Index.Name()
	}
	if c.Pulse != nil {
		s += " pulse=" + c.Pulse.Name()
	}
	return s
}
