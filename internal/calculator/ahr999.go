package calculator

import (
	"fmt"
	"math"
	"time"

	"AhrSentinel/internal/model"
)

// DefaultWindow is the GMA window length in daily closes.
const DefaultWindow = 200

// HistoryFunc lazily supplies the daily close series. It is only invoked on the
// self-calculation branch.
type HistoryFunc func() (model.PriceSeries, error)

// SignalCalculator produces the Ahr999 value either from an override or from
// spot price, GMA200 and the fair value model.
type SignalCalculator struct {
	Model  FairValueModel
	Window int
}

// NewSignalCalculator creates a calculator with the default model and window.
func NewSignalCalculator() *SignalCalculator {
	return &SignalCalculator{Model: DefaultFairValueModel(), Window: DefaultWindow}
}

// ValidOverride reports whether v is usable as an override value.
func ValidOverride(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Override wraps an externally supplied value as a SignalResult.
func Override(v float64, description string) model.SignalResult {
	return model.SignalResult{Value: v, Source: model.SourceOverride, SourceDescription: description}
}

// Compute returns the override when one is given, otherwise self-calculates.
// history is not called on the override branch.
func (c *SignalCalculator) Compute(override *float64, spot float64, history HistoryFunc, today time.Time) (model.SignalResult, error) {
	if override != nil && ValidOverride(*override) {
		return Override(*override, "manual override"), nil
	}
	if history == nil {
		return model.SignalResult{}, fmt.Errorf("%w: no history source", model.ErrInsufficientHistory)
	}
	series, err := history()
	if err != nil {
		return model.SignalResult{}, fmt.Errorf("fetch daily closes: %w", err)
	}
	return c.SelfCalculate(spot, series, today)
}

// SelfCalculate computes (spot/gma)*(spot/fair) from the last Window closes.
func (c *SignalCalculator) SelfCalculate(spot float64, series model.PriceSeries, today time.Time) (model.SignalResult, error) {
	window := c.Window
	if window <= 0 {
		window = DefaultWindow
	}
	if spot <= 0 || math.IsNaN(spot) || math.IsInf(spot, 0) {
		return model.SignalResult{}, fmt.Errorf("%w: spot price %v", model.ErrDomain, spot)
	}
	if series.Len() < window {
		return model.SignalResult{}, fmt.Errorf("%w: got %d usable closes, need %d",
			model.ErrInsufficientHistory, series.Len(), window)
	}

	gma, ok := GeometricMean(series.Closes(window))
	if !ok || gma <= 0 {
		return model.SignalResult{}, fmt.Errorf("%w: geometric mean unavailable", model.ErrDomain)
	}
	fair, err := c.Model.ExpectedPrice(today)
	if err != nil {
		return model.SignalResult{}, err
	}
	if fair <= 0 || math.IsInf(fair, 0) || math.IsNaN(fair) {
		return model.SignalResult{}, fmt.Errorf("%w: fair value %v", model.ErrDomain, fair)
	}

	value := (spot / gma) * (spot / fair)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.SignalResult{}, fmt.Errorf("%w: signal value %v", model.ErrDomain, value)
	}
	return model.SignalResult{
		Value:             value,
		Source:            model.SourceSelfCalculated,
		SourceDescription: fmt.Sprintf("self-calculated GMA%d + power-law fair value", window),
		Aux:               &model.SignalAux{GMA200: gma, FairValue: fair},
	}, nil
}
