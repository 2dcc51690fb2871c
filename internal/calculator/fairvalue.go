package calculator

import (
	"fmt"
	"math"
	"time"

	"AhrSentinel/internal/model"
)

// Genesis is the default origin of the power-law model, the Bitcoin genesis block date.
var Genesis = time.Date(2009, time.January, 3, 0, 0, 0, 0, time.UTC)

// FairValueModel is the power-law regression
// ExpectedPrice = 10^(A*log10(days since Origin) + B).
type FairValueModel struct {
	Origin time.Time
	A      float64
	B      float64
}

// DefaultFairValueModel returns the model with a=5.84, b=-17.01.
func DefaultFairValueModel() FairValueModel {
	return FairValueModel{Origin: Genesis, A: 5.84, B: -17.01}
}

// DaysElapsed returns the whole calendar days between Origin and date.
func (m FairValueModel) DaysElapsed(date time.Time) int {
	d := model.CalendarDay(date).Sub(model.CalendarDay(m.Origin))
	return int(d / (24 * time.Hour))
}

// ExpectedPrice evaluates the model for date. Dates on or before Origin are a
// domain error.
func (m FairValueModel) ExpectedPrice(date time.Time) (float64, error) {
	days := m.DaysElapsed(date)
	if days < 1 {
		return 0, fmt.Errorf("%w: %s is not after origin %s", model.ErrDomain,
			model.DateKey(date), model.DateKey(m.Origin))
	}
	return math.Pow(10, m.A*math.Log10(float64(days))+m.B), nil
}
