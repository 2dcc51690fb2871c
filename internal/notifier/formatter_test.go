package notifier

import (
	"strings"
	"testing"
	"time"

	"AhrSentinel/internal/advisor"
	"AhrSentinel/internal/model"
	"AhrSentinel/internal/strategy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "58,000.00", money(58000))
	assert.Equal(t, "1,234,567.89", money(1234567.891))
	assert.Equal(t, "999.50", money(999.5))
	assert.Equal(t, "-1,000.00", money(-1000))
	assert.Equal(t, "0.00", money(0))
}

func TestFormatDailyReport(t *testing.T) {
	mvrv := 1.5
	rep := &advisor.Report{
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		SpotPrice: 58000,
		Signal: model.SignalResult{Value: 0.3, Source: model.SourceSelfCalculated, SourceDescription: "self",
			Aux: &model.SignalAux{GMA200: 61000, FairValue: 120000}},
		Zone:         "HEAVY DCA",
		Thr3x:        0.366,
		Thr2x:        0.41175,
		Policy:       strategy.DefaultPolicy(),
		Confirmation: model.ConfirmationSignal{Value: &mvrv, Source: "mock"},
		Proposed:     model.ActionThreeX,
		Action:       model.ActionTwoX,
		Pulse:        &model.MarketPulse{ReferencePrice: 57900, Change24h: -6.5, Volume24h: 3.1e10, Source: "CoinGecko aggregate"},
		Spread:       100,
		SpreadLimit:  50,
		SpreadAlert:  true,
		Momentum:     "SELL-OFF",
		Usage:        &model.Usage{Date: "2026-02-10", Action: model.ActionTwoX, Units: 2, UnitsUsed: 2, Remaining: 598, TotalUnits: 600, Recorded: true},
		UnitAmount:   decimal.NewFromInt(10),
		Degraded:     []string{"something degraded"},
	}
	out := FormatDailyReport(rep)

	assert.Contains(t, out, "2026-02-10")
	assert.Contains(t, out, "$58,000.00")
	assert.Contains(t, out, "0.3000 (HEAVY DCA zone)")
	assert.Contains(t, out, "GMA200:              $61,000.00")
	assert.Contains(t, out, "Market Ref:          $57,900.00 (CoinGecko aggregate, spread +100.00)")
	assert.Contains(t, out, "24h Change:          -6.50% | vol $31.00B (SELL-OFF)")
	assert.Contains(t, out, "Alert:               spread above $50.00, high volatility")
	assert.Contains(t, out, "RECOMMENDED ACTION: [2x] (downgraded from 3x)")
	assert.Contains(t, out, "2 used / 600 total, 598 remaining")
	assert.Contains(t, out, "today $20.00, spent $20.00, left $5980.00")
	assert.True(t, strings.HasSuffix(out, "Error: something degraded\n"))
}

func TestFormatDailyReport_OverrideWithoutLedger(t *testing.T) {
	rep := &advisor.Report{
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		SpotPrice: 90000,
		Signal:    model.SignalResult{Value: 0.5, Source: model.SourceOverride, SourceDescription: "manual override"},
		Policy:    strategy.DefaultPolicy(),
		Proposed:  model.ActionOneX,
		Action:    model.ActionOneX,
	}
	out := FormatDailyReport(rep)
	assert.NotContains(t, out, "GMA200")
	assert.NotContains(t, out, "Ammo:")
	assert.Contains(t, out, "Confirmation:        unavailable")
	assert.Contains(t, out, "Market Ref:          unavailable")
	assert.NotContains(t, out, "Alert:")
	assert.Contains(t, out, "RECOMMENDED ACTION: [1x]\n")
}

func TestFormatAmmoStatus(t *testing.T) {
	state := &model.AmmoState{TotalUnits: 600, UnitsUsed: 5, History: []model.AmmoEntry{
		{Date: "2026-03-01", Action: model.ActionThreeX, Units: 3},
		{Date: "2026-03-02", Action: model.ActionTwoX, Units: 2},
		{Date: "2026-03-03", Action: model.ActionPause, Units: 0},
	}}
	out := FormatAmmoStatus(state, decimal.NewFromInt(20), 2)
	assert.Contains(t, out, "Remaining:     595")
	assert.Contains(t, out, "Spent:         $100.00")
	assert.NotContains(t, out, "2026-03-01")
	assert.Contains(t, out, "2026-03-03  PAUSE 0")
}
