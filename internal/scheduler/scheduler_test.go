package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"AhrSentinel/internal/advisor"
	"AhrSentinel/internal/ammo"
	"AhrSentinel/internal/calculator"
	"AhrSentinel/internal/collector"
	"AhrSentinel/internal/model"
	"AhrSentinel/internal/recorder"
	"AhrSentinel/internal/strategy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMessenger struct {
	sent []string
}

func (c *captureMessenger) SendWithRetry(_ context.Context, text string, _ int) error {
	c.sent = append(c.sent, text)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureMessenger) {
	t.Helper()
	v := 0.30
	adv := &advisor.Advisor{
		Collector:   collector.NewMockCollector(&collector.MockFetcher{Price: 58000}, 240),
		Calc:        calculator.NewSignalCalculator(),
		Policy:      strategy.DefaultPolicy(),
		MVRVCeiling: strategy.DefaultMVRVCeiling,
		Ledger:      ammo.NewLedger(filepath.Join(t.TempDir(), "ammo.json"), 600),
		Override:    &v,
	}
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	adv.Recorder = rec

	m := &captureMessenger{}
	s := NewScheduler(context.Background(), adv, m, rec, decimal.NewFromInt(10))
	s.Now = func() time.Time { return time.Date(2026, 2, 10, 0, 5, 0, 0, time.UTC) }
	return s, m
}

func TestScheduler_DailyTaskSendsReport(t *testing.T) {
	s, m := newTestScheduler(t)
	s.RunNow()

	require.Len(t, m.sent, 1)
	assert.True(t, strings.HasPrefix(m.sent[0], "<pre>"))
	assert.Contains(t, m.sent[0], "RECOMMENDED ACTION: [3x]")
}

func TestScheduler_Commands(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/today"), "[3x]")
	assert.Contains(t, s.HandleCommand(ctx, "/ammo"), "Remaining:     597")
	assert.Contains(t, s.HandleCommand(ctx, "/history"), "2026-02-10")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/today")

	// A second /today on the same day does not consume more units.
	s.HandleCommand(ctx, "/today")
	assert.Contains(t, s.HandleCommand(ctx, "/ammo"), "Units used:    3")
}

func TestScheduler_RegisterDaily(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.RegisterDaily("0 5 0 * * *"))
	assert.Error(t, s.RegisterDaily("not a cron"))
	assert.Len(t, s.Cron.Entries(), 1)
}

type failingRecorder struct {
	*recorder.NoopRecorder
}

func (failingRecorder) RecentRuns(int) ([]recorder.RunSnapshot, error) {
	return nil, errors.New("read <runs> & more")
}

func TestScheduler_FailureRepliesAreEscaped(t *testing.T) {
	s, m := newTestScheduler(t)
	mock := &collector.MockFetcher{
		SpotErr: fmt.Errorf("coinbase: %w: status 503: <html><body>Service Unavailable</body></html>", model.ErrFetch),
	}
	s.Advisor.Collector = collector.NewMockCollector(mock, 240)

	s.RunNow()
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "Daily advisory failed")
	assert.Contains(t, m.sent[0], "&lt;html&gt;&lt;body&gt;Service Unavailable")
	assert.NotContains(t, m.sent[0], "<html>")

	s.Recorder = failingRecorder{recorder.NewNoopRecorder()}
	reply := s.HandleCommand(context.Background(), "/history")
	assert.Contains(t, reply, "read &lt;runs&gt; &amp; more")
}
