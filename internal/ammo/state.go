package ammo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"AhrSentinel/internal/model"
)

// DefaultTotalUnits is the budget of a freshly initialized ledger.
const DefaultTotalUnits = 600

// NewState returns an empty ledger with the given budget.
func NewState(totalUnits int) *model.AmmoState {
	return &model.AmmoState{TotalUnits: totalUnits, History: []model.AmmoEntry{}}
}

// LoadState reads the ledger from a JSON file. A missing file yields a fresh
// ledger with totalUnits.
func LoadState(filePath string, totalUnits int) (*model.AmmoState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(totalUnits), nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", model.ErrPersistence, filePath, err)
	}
	var state model.AmmoState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", model.ErrPersistence, filePath, err)
	}
	if state.History == nil {
		state.History = []model.AmmoEntry{}
	}
	if err := Validate(&state); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrPersistence, filePath, err)
	}
	return &state, nil
}

// SaveState writes the ledger atomically through a temp file and rename.
func SaveState(filePath string, state *model.AmmoState) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", model.ErrPersistence, err)
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %w", model.ErrPersistence, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", model.ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %w", model.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync: %w", model.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", model.ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("%w: rename: %w", model.ErrPersistence, err)
	}
	return nil
}

// Validate checks the ledger invariants: unique dates, known actions,
// units matching the action, and UnitsUsed equal to the sum of units.
func Validate(state *model.AmmoState) error {
	if state.TotalUnits < 0 || state.UnitsUsed < 0 {
		return fmt.Errorf("negative totals (total=%d used=%d)", state.TotalUnits, state.UnitsUsed)
	}
	seen := make(map[string]struct{}, len(state.History))
	sum := 0
	for _, e := range state.History {
		if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
			return fmt.Errorf("bad history date %q", e.Date)
		}
		if _, dup := seen[e.Date]; dup {
			return fmt.Errorf("duplicate history date %s", e.Date)
		}
		seen[e.Date] = struct{}{}
		if e.Units != UnitsFor(e.Action) {
			return fmt.Errorf("history %s: %d units for %s", e.Date, e.Units, e.Action)
		}
		sum += e.Units
	}
	if sum != state.UnitsUsed {
		return fmt.Errorf("unitsUsed %d does not match history sum %d", state.UnitsUsed, sum)
	}
	return nil
}
