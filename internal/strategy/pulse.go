package strategy

import "math"

// DefaultSpreadAlert is the spot/reference gap in USD above which the market
// is flagged as volatile.
const DefaultSpreadAlert = 50.0

// Momentum labels a 24h percentage change.
func Momentum(change24h float64) string {
	switch {
	case change24h < -5:
		return "SELL-OFF"
	case change24h > 5:
		return "STRONG MOMENTUM"
	default:
		return "RANGING"
	}
}

// SpreadAlert reports whether spot and reference diverge by more than limit.
func SpreadAlert(spot, reference, limit float64) bool {
	return math.Abs(spot-reference) > limit
}
