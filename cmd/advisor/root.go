package main

import (
	"fmt"
	"os"
	"time"

	"AhrSentinel/internal/advisor"
	"AhrSentinel/internal/ammo"
	"AhrSentinel/internal/calculator"
	"AhrSentinel/internal/collector"
	"AhrSentinel/internal/config"
	"AhrSentinel/internal/notifier"
	"AhrSentinel/internal/recorder"
	"AhrSentinel/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	overrideFlag string
	ledgerFlag   string
	dateFlag     string
	notifyFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Daily Ahr999 DCA advisor for Bitcoin",
	Long: `advisor estimates the Ahr999 accumulation index, maps it to a daily DCA
action (PAUSE, 1x, 2x, 3x) and records the consumed units in the ammo ledger.
Without a subcommand it runs the daily check once and prints the report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfig, "path to the YAML config file")
	pf.StringVar(&ledgerFlag, "ledger", "", "ammo ledger path (overrides ammo.ledger_path)")

	f := rootCmd.Flags()
	f.StringVar(&overrideFlag, "override", "", "use this Ahr999 value instead of fetching or computing one")
	f.StringVar(&dateFlag, "date", "", "advisory date, YYYY-MM-DD (default today, UTC)")
	f.BoolVar(&notifyFlag, "notify", false, "also send the report to Telegram")

	rootCmd.AddCommand(ammoCmd, historyCmd, serveCmd)
}

// loadConfig loads and validates configuration, applies flag overrides and
// sets the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if ledgerFlag != "" {
		cfg.Ammo.LedgerPath = ledgerFlag
	}
	if overrideFlag != "" {
		cfg.Signal.Override = overrideFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func newLedger(cfg *config.Config) *ammo.Ledger {
	return ammo.NewLedger(cfg.Ammo.LedgerPath, cfg.Ammo.TotalUnits)
}

// newRecorder opens the SQLite run history, falling back to a no-op recorder.
func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newAdvisor wires the pipeline from configuration. An invalid manual override
// is logged and ignored.
func newAdvisor(cfg *config.Config, rec recorder.Recorder) (*advisor.Advisor, error) {
	origin, err := cfg.OriginDate()
	if err != nil {
		return nil, err
	}
	override, err := cfg.ReadOverride()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring invalid manual override")
		override = nil
	}

	col := collector.NewCollector(cfg)
	log.Info().Str("sources", col.Describe()).Msg("collectors ready")

	return &advisor.Advisor{
		Collector: col,
		Calc: &calculator.SignalCalculator{
			Model:  calculator.FairValueModel{Origin: origin, A: *cfg.Signal.A, B: *cfg.Signal.B},
			Window: cfg.Signal.Window,
		},
		Policy: strategy.PolicyConfig{
			TotalCostAnchor: cfg.Policy.TotalCostAnchor,
			CashCostAnchor:  cfg.Policy.CashCostAnchor,
			PauseMultiple:   cfg.Policy.PauseMultiple,
			Threshold3x:     cfg.Policy.Threshold3x,
			Threshold2x:     cfg.Policy.Threshold2x,
			AlignRatio:      cfg.Signal.AlignRatio,
		},
		MVRVCeiling: cfg.Policy.MVRVCeiling,
		Ledger:      newLedger(cfg),
		Recorder:    rec,
		Override:    override,
		UnitAmount:  decimal.NewFromFloat(cfg.Ammo.UnitAmount),
		SpreadAlert: cfg.Policy.SpreadAlert,
	}, nil
}

func advisoryDate() (time.Time, error) {
	if dateFlag == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, dateFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	today, err := advisoryDate()
	if err != nil {
		return err
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	adv, err := newAdvisor(cfg, rec)
	if err != nil {
		return err
	}
	rep, err := adv.Run(cmd.Context(), today)
	if err != nil {
		return err
	}

	text := notifier.FormatDailyReport(rep)
	fmt.Fprint(cmd.OutOrStdout(), text)

	if notifyFlag {
		if err := cfg.ValidateTelegram(); err != nil {
			log.Warn().Err(err).Msg("--notify set but Telegram is not configured")
			return nil
		}
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(cmd.Context(), notifier.Preformatted(text), 3); err != nil {
			log.Error().Err(err).Msg("send report")
		}
	}
	return nil
}
