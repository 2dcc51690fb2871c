package strategy

import (
	"testing"

	"AhrSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func self(v float64) model.SignalResult {
	return model.SignalResult{Value: v, Source: model.SourceSelfCalculated}
}

func override(v float64) model.SignalResult {
	return model.SignalResult{Value: v, Source: model.SourceOverride}
}

func TestThresholds_Scaling(t *testing.T) {
	p := DefaultPolicy()

	thr3x, thr2x := p.Thresholds(model.SourceSelfCalculated)
	assert.InDelta(t, 0.366, thr3x, 1e-12)
	assert.InDelta(t, 0.41175, thr2x, 1e-12)

	thr3x, thr2x = p.Thresholds(model.SourceOverride)
	assert.Equal(t, 0.40, thr3x)
	assert.Equal(t, 0.45, thr2x)
}

func TestDecide_AllBranches(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name   string
		spot   float64
		signal model.SignalResult
		want   model.Action
	}{
		{"pause above 1.2x total cost", 102001, override(0.1), model.ActionPause},
		{"just under pause line", 101999, override(2.0), model.ActionOneX},
		{"cash cost boundary inclusive", 60000, override(5.0), model.ActionThreeX},
		{"cash cost boundary self", 60000, self(5.0), model.ActionThreeX},
		{"below cash cost", 58000, override(0.30), model.ActionThreeX},
		{"total cost boundary inclusive", 85000, override(5.0), model.ActionTwoX},
		{"between anchors", 70000, override(1.0), model.ActionTwoX},
		{"override low value above anchors", 90000, override(0.39), model.ActionThreeX},
		{"override 2x band above anchors", 90000, override(0.40), model.ActionTwoX},
		{"override 1x above anchors", 90000, override(0.45), model.ActionOneX},
		{"self 0.37 is 2x not 3x", 90000, self(0.37), model.ActionTwoX},
		{"self below scaled 3x", 90000, self(0.365), model.ActionThreeX},
		{"self 0.42 is 1x", 90000, self(0.42), model.ActionOneX},
		{"self 0.41 is 2x", 90000, self(0.41), model.ActionTwoX},
		{"override 0.37 is 3x", 90000, override(0.37), model.ActionThreeX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.spot, tt.signal, p))
		})
	}
}

func TestDecide_CustomAnchors(t *testing.T) {
	p := DefaultPolicy()
	p.TotalCostAnchor = 50000
	p.CashCostAnchor = 40000
	p.AlignRatio = 1.0

	assert.Equal(t, model.ActionPause, Decide(60001, self(0.1), p))
	assert.Equal(t, model.ActionThreeX, Decide(55000, self(0.39), p))
	assert.Equal(t, model.ActionOneX, Decide(55000, self(0.45), p))
}

func TestConfirm(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	tests := []struct {
		name     string
		proposed model.Action
		value    *float64
		want     model.Action
	}{
		{"3x downgraded when mvrv high", model.ActionThreeX, v(1.5), model.ActionTwoX},
		{"3x kept when unavailable", model.ActionThreeX, nil, model.ActionThreeX},
		{"3x kept at ceiling", model.ActionThreeX, v(1.0), model.ActionThreeX},
		{"3x kept below ceiling", model.ActionThreeX, v(0.8), model.ActionThreeX},
		{"2x untouched", model.ActionTwoX, v(5.0), model.ActionTwoX},
		{"1x untouched", model.ActionOneX, v(5.0), model.ActionOneX},
		{"pause never escalated", model.ActionPause, v(0.1), model.ActionPause},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confirm(tt.proposed, model.ConfirmationSignal{Value: tt.value}, DefaultMVRVCeiling)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZone_Boundaries(t *testing.T) {
	tests := []struct {
		value float64
		label string
	}{
		{0.2, "HEAVY DCA"},
		{0.4499, "HEAVY DCA"},
		{0.45, "DCA"},
		{1.19, "DCA"},
		{1.2, "PAUSE DCA"},
		{3, "PAUSE DCA"},
	}
	for _, tt := range tests {
		if got := Zone(tt.value); got != tt.label {
			t.Errorf("value %.4f: expected %q, got %q", tt.value, tt.label, got)
		}
	}
}

func TestMomentum(t *testing.T) {
	assert.Equal(t, "SELL-OFF", Momentum(-5.01))
	assert.Equal(t, "RANGING", Momentum(-5))
	assert.Equal(t, "RANGING", Momentum(0))
	assert.Equal(t, "RANGING", Momentum(5))
	assert.Equal(t, "STRONG MOMENTUM", Momentum(5.01))
}

func TestSpreadAlert(t *testing.T) {
	assert.False(t, SpreadAlert(58000, 57950, DefaultSpreadAlert))
	assert.True(t, SpreadAlert(58000, 57949, DefaultSpreadAlert))
	assert.True(t, SpreadAlert(57900, 58000, DefaultSpreadAlert))
}
