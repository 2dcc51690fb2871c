package main

import (
	"fmt"

	"AhrSentinel/internal/notifier"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var recentEntries int

var ammoCmd = &cobra.Command{
	Use:   "ammo",
	Short: "Print the ammo ledger without fetching market data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		state, err := newLedger(cfg).State()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), notifier.FormatAmmoStatus(state, decimal.NewFromFloat(cfg.Ammo.UnitAmount), recentEntries))
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent advisory runs from the run history database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec := newRecorder(cfg)
		defer rec.Close()
		runs, err := rec.RecentRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("read run history: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), notifier.FormatRunHistory(runs))
		return nil
	},
}

func init() {
	ammoCmd.Flags().IntVar(&recentEntries, "recent", 10, "number of recent ledger entries to show")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
}
