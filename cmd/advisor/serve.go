package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AhrSentinel/internal/notifier"
	"AhrSentinel/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily check on a schedule and answer Telegram commands",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Info().Msg("AhrSentinel starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	adv, err := newAdvisor(cfg, rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	sched := scheduler.NewScheduler(ctx, adv, tn, rec, decimal.NewFromFloat(cfg.Ammo.UnitAmount))
	if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily task now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.DailyCron).Msg("AhrSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()
	return nil
}
