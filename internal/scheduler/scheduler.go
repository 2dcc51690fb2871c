package scheduler

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"AhrSentinel/internal/advisor"
	"AhrSentinel/internal/notifier"
	"AhrSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Messenger delivers reports. *notifier.TelegramNotifier satisfies it.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the daily advisory check on a cron schedule and answers chat
// commands. Runs are serialized.
type Scheduler struct {
	Cron       *cron.Cron
	Advisor    *advisor.Advisor
	Messenger  Messenger
	Recorder   recorder.Recorder
	UnitAmount decimal.Decimal
	Ctx        context.Context
	Now        func() time.Time

	mu sync.Mutex
}

// NewScheduler creates a Scheduler. Cron specs are evaluated in UTC, matching
// the ledger's calendar days.
func NewScheduler(ctx context.Context, adv *advisor.Advisor, m Messenger, rec recorder.Recorder, unitAmount decimal.Decimal) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		Advisor:    adv,
		Messenger:  m,
		Recorder:   rec,
		UnitAmount: unitAmount,
		Ctx:        ctx,
		Now:        time.Now,
	}
}

// RegisterDaily registers the daily advisory task.
func (s *Scheduler) RegisterDaily(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the daily task immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Info().Msg("running daily advisory task")
	s.trySend(s.runReport())
}

func (s *Scheduler) runReport() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.Advisor.Run(s.Ctx, s.Now())
	if err != nil {
		log.Error().Err(err).Msg("daily run failed")
		return failure("Daily advisory failed", err)
	}
	return notifier.Preformatted(notifier.FormatDailyReport(rep))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch command {
	case "/today":
		return s.runReport()
	case "/ammo":
		state, err := s.Advisor.Ledger.State()
		if err != nil {
			return failure("Ledger unavailable", err)
		}
		return notifier.Preformatted(notifier.FormatAmmoStatus(state, s.UnitAmount, 10))
	case "/history":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			return failure("History unavailable", err)
		}
		return notifier.Preformatted(notifier.FormatRunHistory(runs))
	default:
		return "Commands:\n• /today\n• /ammo\n• /history"
	}
}

// failure formats an error reply. Messages go out with parse_mode=HTML and
// upstream errors can carry HTML bodies.
func failure(what string, err error) string {
	return "❌ " + what + ": " + html.EscapeString(err.Error())
}

func (s *Scheduler) trySend(text string) {
	if s.Messenger == nil {
		return
	}
	if err := s.Messenger.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
