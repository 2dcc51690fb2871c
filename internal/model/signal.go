package model

import (
	"fmt"
	"strings"
	"time"
)

// Action is the recommended DCA action for a day.
type Action int

// Actions are ordered by aggressiveness.
const (
	ActionPause Action = iota
	ActionOneX
	ActionTwoX
	ActionThreeX
)

// String returns the ledger wire form.
func (a Action) String() string {
	switch a {
	case ActionPause:
		return "PAUSE"
	case ActionOneX:
		return "1x"
	case ActionTwoX:
		return "2x"
	case ActionThreeX:
		return "3x"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses the ledger wire form of an action.
func ParseAction(s string) (Action, error) {
	switch strings.TrimSpace(s) {
	case "PAUSE":
		return ActionPause, nil
	case "1x":
		return ActionOneX, nil
	case "2x":
		return ActionTwoX, nil
	case "3x":
		return ActionThreeX, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if a < ActionPause || a > ActionThreeX {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SignalSource tells which branch produced a signal value. ActionPolicy scales
// its thresholds differently per source.
type SignalSource string

const (
	SourceOverride       SignalSource = "OVERRIDE"
	SourceSelfCalculated SignalSource = "SELF_CALCULATED"
)

// SignalAux holds the intermediate values of a self-calculated signal.
type SignalAux struct {
	GMA200    float64
	FairValue float64
}

// SignalResult is the output of the signal calculator.
type SignalResult struct {
	Value             float64
	Source            SignalSource
	SourceDescription string
	Aux               *SignalAux // nil unless Source is SourceSelfCalculated
}

// ConfirmationSignal is the secondary on-chain valuation metric. A nil Value
// means unavailable.
type ConfirmationSignal struct {
	Value  *float64
	AsOf   *time.Time
	Source string
}

// Available reports whether a confirmation value is present.
func (c ConfirmationSignal) Available() bool { return c.Value != nil }
