package advisor

import (
	"context"
	"fmt"
	"math"
	"time"

	"AhrSentinel/internal/ammo"
	"AhrSentinel/internal/calculator"
	"AhrSentinel/internal/collector"
	"AhrSentinel/internal/model"
	"AhrSentinel/internal/recorder"
	"AhrSentinel/internal/strategy"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Advisor runs one daily advisory check: fetch, compute, decide, confirm,
// record.
type Advisor struct {
	Collector   *collector.Collector
	Calc        *calculator.SignalCalculator
	Policy      strategy.PolicyConfig
	MVRVCeiling float64
	Ledger      *ammo.Ledger
	Recorder    recorder.Recorder
	Override    *float64 // manual override, already validated
	UnitAmount  decimal.Decimal
	SpreadAlert float64 // USD; zero means strategy.DefaultSpreadAlert
}

// Report is the outcome of a run. Usage is nil when the ledger was not updated.
type Report struct {
	Date         time.Time
	SpotPrice    float64
	Signal       model.SignalResult
	Zone         string
	Thr3x        float64
	Thr2x        float64
	Policy       strategy.PolicyConfig
	Confirmation model.ConfirmationSignal
	Proposed     model.Action
	Action       model.Action
	Pulse        *model.MarketPulse // nil when unavailable
	Spread       float64            // spot minus pulse reference price
	SpreadLimit  float64
	SpreadAlert  bool
	Momentum     string
	Usage        *model.Usage
	LedgerErr    error
	UnitAmount   decimal.Decimal
	Degraded     []string
}

// Downgraded reports whether the confirmation filter changed the action.
func (r *Report) Downgraded() bool { return r.Proposed != r.Action }

// Budget converts unit figures to quote currency. ok is false when no unit
// amount is configured or the ledger was not updated.
func (r *Report) Budget() (today, spent, remaining decimal.Decimal, ok bool) {
	if r.Usage == nil || !r.UnitAmount.IsPositive() {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}
	today = r.UnitAmount.Mul(decimal.NewFromInt(int64(r.Usage.Units)))
	spent = r.UnitAmount.Mul(decimal.NewFromInt(int64(r.Usage.UnitsUsed)))
	remaining = r.UnitAmount.Mul(decimal.NewFromInt(int64(r.Usage.Remaining)))
	return today, spent, remaining, true
}

func (r *Report) degrade(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Degraded = append(r.Degraded, msg)
	log.Warn().Msg(msg)
}

// Run executes the pipeline for today. It returns an error only when no
// recommendation can be made: spot price unavailable, or the signal could not
// be obtained. Confirmation and ledger failures are recorded in Report.Degraded.
func (a *Advisor) Run(ctx context.Context, today time.Time) (*Report, error) {
	today = model.CalendarDay(today)
	rep := &Report{Date: today, Policy: a.Policy, UnitAmount: a.UnitAmount}

	spot, err := a.Collector.Spot.FetchSpotPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("spot price: %w", err)
	}
	if spot <= 0 || math.IsNaN(spot) || math.IsInf(spot, 0) {
		return nil, fmt.Errorf("spot price: %s: %w: unusable price %v", a.Collector.Spot.Name(), model.ErrFetch, spot)
	}
	rep.SpotPrice = spot
	log.Info().Float64("spot", spot).Str("source", a.Collector.Spot.Name()).Msg("spot price fetched")

	sig, err := a.signal(ctx, rep, spot, today)
	if err != nil {
		return nil, fmt.Errorf("ahr999: %w", err)
	}
	rep.Signal = sig
	rep.Zone = strategy.Zone(sig.Value)
	rep.Thr3x, rep.Thr2x = a.Policy.Thresholds(sig.Source)
	log.Info().Float64("value", sig.Value).Str("source", string(sig.Source)).Msg("signal computed")

	rep.Proposed = strategy.Decide(spot, sig, a.Policy)

	conf, err := a.Collector.Onchain.FetchOnchainMetric(ctx)
	if err != nil {
		conf = model.ConfirmationSignal{Source: conf.Source}
		rep.degrade("confirmation signal unavailable, downgrade rule skipped: %v", err)
	}
	rep.Confirmation = conf
	rep.Action = strategy.Confirm(rep.Proposed, conf, a.MVRVCeiling)
	if rep.Downgraded() {
		log.Info().Str("proposed", rep.Proposed.String()).Str("action", rep.Action.String()).
			Float64("mvrv", *conf.Value).Msg("action downgraded by confirmation signal")
	}

	a.pulse(ctx, rep)

	usage, err := a.Ledger.RecordToday(today, rep.Action)
	if err != nil {
		rep.LedgerErr = err
		rep.degrade("ammo ledger not updated: %v", err)
	} else {
		rep.Usage = &usage
		if !usage.Recorded && usage.Action != rep.Action {
			rep.degrade("ledger already holds %s for %s; today's %s was not recorded", usage.Action, usage.Date, rep.Action)
		}
	}

	if a.Recorder != nil {
		if err := a.Recorder.RecordRun(snapshot(rep)); err != nil {
			log.Error().Err(err).Msg("record run")
		}
	}
	return rep, nil
}

// signal resolves the override chain (manual, then published index) before
// falling back to self-calculation. History is only fetched on the fallback.
func (a *Advisor) signal(ctx context.Context, rep *Report, spot float64, today time.Time) (model.SignalResult, error) {
	override := a.Override
	description := "manual override"
	if override == nil && a.Collector.Index != nil {
		v, err := a.Collector.Index.FetchIndex(ctx)
		switch {
		case err != nil:
			rep.degrade("%s index unavailable, self-calculating: %v", a.Collector.Index.Name(), err)
		case !calculator.ValidOverride(v):
			rep.degrade("%s index %v rejected, self-calculating", a.Collector.Index.Name(), v)
		default:
			override = &v
			description = a.Collector.Index.Name() + " published index"
		}
	}

	history := func() (model.PriceSeries, error) {
		return a.Collector.History.FetchDailyCloses(ctx, a.Collector.LookbackDays)
	}
	sig, err := a.Calc.Compute(override, spot, history, today)
	if err != nil {
		return model.SignalResult{}, err
	}
	if sig.Source == model.SourceOverride {
		sig.SourceDescription = description
	}
	return sig, nil
}

// pulse compares the spot price with an aggregated reference price. It never
// affects the action.
func (a *Advisor) pulse(ctx context.Context, rep *Report) {
	if a.Collector.Pulse == nil {
		return
	}
	p, err := a.Collector.Pulse.FetchPulse(ctx)
	if err != nil {
		rep.degrade("market pulse unavailable: %v", err)
		return
	}
	limit := a.SpreadAlert
	if limit <= 0 {
		limit = strategy.DefaultSpreadAlert
	}
	rep.Pulse = &p
	rep.Spread = rep.SpotPrice - p.ReferencePrice
	rep.SpreadLimit = limit
	rep.SpreadAlert = strategy.SpreadAlert(rep.SpotPrice, p.ReferencePrice, limit)
	rep.Momentum = strategy.Momentum(p.Change24h)
	if rep.SpreadAlert {
		log.Warn().Float64("spread", rep.Spread).Float64("limit", limit).Msg("spot deviates from reference price")
	}
}

func snapshot(rep *Report) *recorder.RunSnapshot {
	snap := &recorder.RunSnapshot{
		Date:         model.DateKey(rep.Date),
		SpotPrice:    rep.SpotPrice,
		SignalValue:  rep.Signal.Value,
		SignalSource: string(rep.Signal.Source),
		MVRV:         rep.Confirmation.Value,
		Proposed:     rep.Proposed.String(),
		Action:       rep.Action.String(),
		LedgerOK:     rep.LedgerErr == nil,
	}
	if rep.Signal.Aux != nil {
		snap.GMA200 = rep.Signal.Aux.GMA200
		snap.FairValue = rep.Signal.Aux.FairValue
	}
	if rep.Usage != nil {
		snap.UnitsUsed = rep.Usage.UnitsUsed
		snap.UnitsRemaining = rep.Usage.Remaining
	}
	if len(rep.Degraded) > 0 {
		snap.Degraded = rep.Degraded[0]
		for _, d := range rep.Degraded[1:] {
			snap.Degraded += "; " + d
		}
	}
	return snap
}
