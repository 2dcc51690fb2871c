package recorder

import "time"

// RunSnapshot holds everything one advisory run produced.
type RunSnapshot struct {
	RunID          string
	Date           string
	CreatedAt      time.Time
	SpotPrice      float64
	SignalValue    float64
	SignalSource   string
	GMA200         float64 // zero for override runs
	FairValue      float64 // zero for override runs
	MVRV           *float64
	Proposed       string
	Action         string
	UnitsUsed      int
	UnitsRemaining int
	LedgerOK       bool
	Degraded       string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	RecentRuns(limit int) ([]RunSnapshot, error)
	Close() error
}
