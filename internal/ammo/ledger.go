package ammo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"AhrSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// UnitsFor returns the budget units an action consumes.
func UnitsFor(a model.Action) int {
	switch a {
	case model.ActionOneX:
		return 1
	case model.ActionTwoX:
		return 2
	case model.ActionThreeX:
		return 3
	default:
		return 0
	}
}

// Remaining returns the unspent budget, never negative.
func Remaining(state *model.AmmoState) int {
	return max(state.TotalUnits-state.UnitsUsed, 0)
}

// Lookup returns today's entry if present.
func Lookup(state *model.AmmoState, date string) (model.AmmoEntry, bool) {
	for _, e := range state.History {
		if e.Date == date {
			return e, true
		}
	}
	return model.AmmoEntry{}, false
}

// RecordToday appends today's action to state unless an entry for today
// already exists, in which case state is left untouched and the existing entry
// is reported. The first write of a day wins.
func RecordToday(state *model.AmmoState, today time.Time, action model.Action) model.Usage {
	date := model.DateKey(today)
	if e, ok := Lookup(state, date); ok {
		return usage(state, e, false)
	}
	e := model.AmmoEntry{Date: date, Action: action, Units: UnitsFor(action)}
	state.History = append(state.History, e)
	state.UnitsUsed += e.Units
	return usage(state, e, true)
}

func usage(state *model.AmmoState, e model.AmmoEntry, recorded bool) model.Usage {
	return model.Usage{
		Date:       e.Date,
		Action:     e.Action,
		Units:      e.Units,
		UnitsUsed:  state.UnitsUsed,
		Remaining:  Remaining(state),
		TotalUnits: state.TotalUnits,
		Recorded:   recorded,
	}
}

// Ledger is the file-backed ammo ledger. Each update is a locked
// read-modify-write of the ledger file, so separate processes running on the
// same day cannot double-count.
type Ledger struct {
	mu         sync.Mutex
	filePath   string
	totalUnits int
}

// NewLedger creates a Ledger for filePath. totalUnits seeds a ledger file that
// does not exist yet; an existing file keeps its own budget.
func NewLedger(filePath string, totalUnits int) *Ledger {
	if totalUnits <= 0 {
		totalUnits = DefaultTotalUnits
	}
	return &Ledger{filePath: filePath, totalUnits: totalUnits}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.filePath }

// RecordToday records action for today and persists the ledger. All failures
// wrap model.ErrPersistence.
func (l *Ledger) RecordToday(today time.Time, action model.Action) (model.Usage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.filePath), 0o755); err != nil {
		return model.Usage{}, fmt.Errorf("%w: create dir: %w", model.ErrPersistence, err)
	}
	unlock, err := lockFile(l.filePath + ".lock")
	if err != nil {
		return model.Usage{}, fmt.Errorf("%w: lock: %w", model.ErrPersistence, err)
	}
	defer unlock()

	state, err := LoadState(l.filePath, l.totalUnits)
	if err != nil {
		return model.Usage{}, err
	}
	u := RecordToday(state, today, action)
	if !u.Recorded {
		log.Info().Str("date", u.Date).Str("action", u.Action.String()).
			Msg("ledger already has an entry for today, not recording again")
		return u, nil
	}
	if err := SaveState(l.filePath, state); err != nil {
		return model.Usage{}, err
	}
	log.Info().Str("date", u.Date).Str("action", u.Action.String()).
		Int("units", u.Units).Int("used", u.UnitsUsed).Int("remaining", u.Remaining).
		Msg("ledger updated")
	return u, nil
}

// State returns a snapshot of the persisted ledger.
func (l *Ledger) State() (*model.AmmoState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoadState(l.filePath, l.totalUnits)
}
