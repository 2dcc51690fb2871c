package notifier

import (
	"fmt"
	"strings"

	"AhrSentinel/internal/advisor"
	"AhrSentinel/internal/ammo"
	"AhrSentinel/internal/model"
	"AhrSentinel/internal/recorder"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatDailyReport formats a run as the plain-text advisory report.
func FormatDailyReport(rep *advisor.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== AHR999 DCA ADVISOR | %s ===\n", model.DateKey(rep.Date)))
	b.WriteString(fmt.Sprintf("BTC Spot:            $%s\n", money(rep.SpotPrice)))
	b.WriteString(fmt.Sprintf("Ahr999:              %.4f (%s zone)\n", rep.Signal.Value, rep.Zone))
	b.WriteString(fmt.Sprintf("Ahr999 Source:       %s\n", rep.Signal.SourceDescription))
	if aux := rep.Signal.Aux; aux != nil {
		b.WriteString(fmt.Sprintf("GMA200:              $%s\n", money(aux.GMA200)))
		b.WriteString(fmt.Sprintf("ExpPrice:            $%s\n", money(aux.FairValue)))
	}
	b.WriteString(fmt.Sprintf("Thresholds:          3x < %.4f | 2x < %.4f\n", rep.Thr3x, rep.Thr2x))
	b.WriteString(fmt.Sprintf("Mining Anchors:      Total $%s / Cash $%s\n",
		money(rep.Policy.TotalCostAnchor), money(rep.Policy.CashCostAnchor)))

	if c := rep.Confirmation; c.Available() {
		asOf := ""
		if c.AsOf != nil {
			asOf = " as of " + model.DateKey(*c.AsOf)
		}
		b.WriteString(fmt.Sprintf("Confirmation:        %.3f%s (%s)\n", *c.Value, asOf, c.Source))
	} else {
		b.WriteString("Confirmation:        unavailable\n")
	}

	if p := rep.Pulse; p != nil {
		b.WriteString(fmt.Sprintf("Market Ref:          $%s (%s, spread %+.2f)\n", money(p.ReferencePrice), p.Source, rep.Spread))
		b.WriteString(fmt.Sprintf("24h Change:          %+.2f%% | vol $%.2fB (%s)\n", p.Change24h, p.Volume24h/1e9, rep.Momentum))
		if rep.SpreadAlert {
			b.WriteString(fmt.Sprintf("Alert:               spread above $%s, high volatility\n", money(rep.SpreadLimit)))
		}
	} else {
		b.WriteString("Market Ref:          unavailable\n")
	}

	b.WriteString("--------------------------\n")
	if rep.Downgraded() {
		b.WriteString(fmt.Sprintf("RECOMMENDED ACTION: [%s] (downgraded from %s)\n", rep.Action, rep.Proposed))
	} else {
		b.WriteString(fmt.Sprintf("RECOMMENDED ACTION: [%s]\n", rep.Action))
	}
	b.WriteString("--------------------------\n")

	if u := rep.Usage; u != nil {
		b.WriteString(fmt.Sprintf("Ammo:                %d used / %d total, %d remaining\n", u.UnitsUsed, u.TotalUnits, u.Remaining))
		if !u.Recorded {
			b.WriteString(fmt.Sprintf("Ledger:              already recorded %s for %s\n", u.Action, u.Date))
		}
		if today, spent, remaining, ok := rep.Budget(); ok {
			b.WriteString(fmt.Sprintf("Budget:              today $%s, spent $%s, left $%s\n",
				today.StringFixed(2), spent.StringFixed(2), remaining.StringFixed(2)))
		}
	}

	for _, d := range rep.Degraded {
		b.WriteString(fmt.Sprintf("Error: %s\n", d))
	}
	return b.String()
}

// FormatAmmoStatus formats the ledger for display. unitAmount may be zero.
func FormatAmmoStatus(state *model.AmmoState, unitAmount decimal.Decimal, recent int) string {
	var b strings.Builder
	b.WriteString("=== AMMO LEDGER ===\n")
	b.WriteString(fmt.Sprintf("Total units:   %d\n", state.TotalUnits))
	b.WriteString(fmt.Sprintf("Units used:    %d\n", state.UnitsUsed))
	b.WriteString(fmt.Sprintf("Remaining:     %d\n", ammo.Remaining(state)))
	if unitAmount.IsPositive() {
		b.WriteString(fmt.Sprintf("Unit amount:   $%s\n", unitAmount.StringFixed(2)))
		b.WriteString(fmt.Sprintf("Spent:         $%s\n", unitAmount.Mul(decimal.NewFromInt(int64(state.UnitsUsed))).StringFixed(2)))
	}
	if len(state.History) == 0 {
		b.WriteString("No history yet.\n")
		return b.String()
	}
	start := len(state.History) - recent
	if recent <= 0 || start < 0 {
		start = 0
	}
	b.WriteString("Recent:\n")
	for _, e := range state.History[start:] {
		b.WriteString(fmt.Sprintf("  %s  %-5s %d\n", e.Date, e.Action, e.Units))
	}
	return b.String()
}

// FormatRunHistory formats recorded runs, newest first.
func FormatRunHistory(runs []recorder.RunSnapshot) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}
	var b strings.Builder
	b.WriteString("=== RECENT RUNS ===\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  spot $%s  ahr999 %.4f  %-5s", r.Date, money(r.SpotPrice), r.SignalValue, r.Action))
		if r.Proposed != r.Action {
			b.WriteString(fmt.Sprintf(" (from %s)", r.Proposed))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// money renders a price with thousands separators and two decimals.
func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
