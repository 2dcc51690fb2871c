package strategy

import "AhrSentinel/internal/model"

// PolicyConfig holds the anchors and thresholds of the 1-2-3 DCA model.
type PolicyConfig struct {
	TotalCostAnchor float64 // all-in mining cost
	CashCostAnchor  float64 // cash mining cost
	PauseMultiple   float64 // pause above TotalCostAnchor*PauseMultiple
	Threshold3x     float64
	Threshold2x     float64
	// AlignRatio scales the thresholds for self-calculated signals, which run
	// lower than the externally published index. Empirical; recalibrate.
	AlignRatio float64
}

// DefaultPolicy returns the stock anchors and thresholds.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		TotalCostAnchor: 85000,
		CashCostAnchor:  60000,
		PauseMultiple:   1.2,
		Threshold3x:     0.40,
		Threshold2x:     0.45,
		AlignRatio:      0.915,
	}
}

// Thresholds returns the 3x and 2x thresholds for the given signal source.
func (p PolicyConfig) Thresholds(source model.SignalSource) (thr3x, thr2x float64) {
	if source == model.SourceSelfCalculated {
		return p.Threshold3x * p.AlignRatio, p.Threshold2x * p.AlignRatio
	}
	return p.Threshold3x, p.Threshold2x
}

// Decide maps spot price and signal to an action. Rules are checked in order
// and the first match wins.
func Decide(spot float64, signal model.SignalResult, p PolicyConfig) model.Action {
	thr3x, thr2x := p.Thresholds(signal.Source)
	switch {
	case spot > p.TotalCostAnchor*p.PauseMultiple:
		return model.ActionPause
	case spot <= p.CashCostAnchor || signal.Value < thr3x:
		return model.ActionThreeX
	case spot <= p.TotalCostAnchor || signal.Value < thr2x:
		return model.ActionTwoX
	default:
		return model.ActionOneX
	}
}

// Zone labels an index value by the commonly used Ahr999 bands.
func Zone(value float64) string {
	switch {
	case value < 0.45:
		return "HEAVY DCA"
	case value < 1.2:
		return "DCA"
	default:
		return "PAUSE DCA"
	}
}
