package calculator

import (
	"math"
	"testing"
	"time"

	"AhrSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

func makeSeries(n int, price func(i int) float64) model.PriceSeries {
	raw := make([]model.PricePoint, n)
	for i := 0; i < n; i++ {
		raw[i] = model.PricePoint{Date: testDay.AddDate(0, 0, -(n - i)), Price: price(i)}
	}
	return model.NewPriceSeries(raw)
}

func TestGeometricMean_BetweenMinAndMax(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
	}{
		{"single", []float64{42000}},
		{"flat", []float64{100, 100, 100}},
		{"spread", []float64{10, 1000, 55, 70000, 3.5}},
		{"two", []float64{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gma, ok := GeometricMean(tt.prices)
			require.True(t, ok)
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, p := range tt.prices {
				lo = math.Min(lo, p)
				hi = math.Max(hi, p)
			}
			assert.GreaterOrEqual(t, gma, lo*(1-1e-12))
			assert.LessOrEqual(t, gma, hi*(1+1e-12))
		})
	}

	gma, _ := GeometricMean([]float64{1, 4})
	assert.InDelta(t, 2.0, gma, 1e-9)
}

func TestGeometricMean_FiltersUnusable(t *testing.T) {
	gma, ok := GeometricMean([]float64{0, -5, math.NaN(), 9, 1, math.Inf(1)})
	require.True(t, ok)
	assert.InDelta(t, 3.0, gma, 1e-9)

	_, ok = GeometricMean([]float64{0, -1})
	assert.False(t, ok)

	_, ok = GeometricMean(nil)
	assert.False(t, ok)
}

func TestFairValue_MonotonicInDays(t *testing.T) {
	m := DefaultFairValueModel()
	prev := 0.0
	for _, d := range []time.Time{
		Genesis.AddDate(0, 0, 1),
		Genesis.AddDate(1, 0, 0),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		testDay,
		testDay.AddDate(0, 0, 1),
	} {
		v, err := m.ExpectedPrice(d)
		require.NoError(t, err)
		assert.Greater(t, v, prev, "expected price must grow at %s", model.DateKey(d))
		prev = v
	}
}

func TestFairValue_Formula(t *testing.T) {
	m := DefaultFairValueModel()
	days := m.DaysElapsed(testDay)
	assert.Equal(t, 6247, days)

	v, err := m.ExpectedPrice(testDay)
	require.NoError(t, err)
	want := math.Pow(10, 5.84*math.Log10(float64(days))-17.01)
	assert.InDelta(t, want, v, 1e-6)
}

func TestFairValue_DomainError(t *testing.T) {
	m := DefaultFairValueModel()
	for _, d := range []time.Time{Genesis, Genesis.AddDate(0, 0, -3), Genesis.Add(23 * time.Hour)} {
		_, err := m.ExpectedPrice(d)
		assert.ErrorIs(t, err, model.ErrDomain)
	}
	_, err := m.ExpectedPrice(Genesis.AddDate(0, 0, 1))
	assert.NoError(t, err)
}

func TestCompute_OverrideSkipsHistory(t *testing.T) {
	calls := 0
	history := func() (model.PriceSeries, error) {
		calls++
		return makeSeries(250, func(int) float64 { return 50000 }), nil
	}
	v := 0.42
	c := NewSignalCalculator()

	res, err := c.Compute(&v, 58000, history, testDay)
	require.NoError(t, err)
	assert.Equal(t, model.SourceOverride, res.Source)
	assert.Equal(t, 0.42, res.Value)
	assert.Nil(t, res.Aux)
	assert.Zero(t, calls)
}

func TestCompute_InvalidOverrideFallsBack(t *testing.T) {
	calls := 0
	history := func() (model.PriceSeries, error) {
		calls++
		return makeSeries(200, func(int) float64 { return 50000 }), nil
	}
	v := math.NaN()
	res, err := NewSignalCalculator().Compute(&v, 58000, history, testDay)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSelfCalculated, res.Source)
	assert.Equal(t, 1, calls)
}

func TestCompute_HistoryBoundary(t *testing.T) {
	c := NewSignalCalculator()
	flat := func(int) float64 { return 60000 }

	_, err := c.SelfCalculate(60000, makeSeries(199, flat), testDay)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	res, err := c.SelfCalculate(60000, makeSeries(200, flat), testDay)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSelfCalculated, res.Source)
	require.NotNil(t, res.Aux)
	assert.InDelta(t, 60000, res.Aux.GMA200, 1e-6)

	fair, _ := c.Model.ExpectedPrice(testDay)
	assert.InDelta(t, fair, res.Aux.FairValue, 1e-9)
	assert.InDelta(t, 60000/fair, res.Value, 1e-12)
}

func TestCompute_UsesLastWindow(t *testing.T) {
	// 50 cheap closes followed by 200 at 80000: only the tail counts.
	series := makeSeries(250, func(i int) float64 {
		if i < 50 {
			return 1000
		}
		return 80000
	})
	res, err := NewSignalCalculator().SelfCalculate(80000, series, testDay)
	require.NoError(t, err)
	assert.InDelta(t, 80000, res.Aux.GMA200, 1e-6)
}

func TestCompute_NonPositivePointsDoNotCount(t *testing.T) {
	series := makeSeries(210, func(i int) float64 {
		if i%10 == 0 {
			return 0
		}
		return 70000
	})
	assert.Equal(t, 189, series.Len())
	_, err := NewSignalCalculator().SelfCalculate(70000, series, testDay)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestCompute_DomainErrors(t *testing.T) {
	c := NewSignalCalculator()
	series := makeSeries(200, func(int) float64 { return 60000 })

	_, err := c.SelfCalculate(0, series, testDay)
	assert.ErrorIs(t, err, model.ErrDomain)

	_, err = c.SelfCalculate(60000, series, Genesis)
	assert.ErrorIs(t, err, model.ErrDomain)
}

func TestCompute_HistoryErrorPropagates(t *testing.T) {
	history := func() (model.PriceSeries, error) {
		return model.PriceSeries{}, model.ErrFetch
	}
	_, err := NewSignalCalculator().Compute(nil, 60000, history, testDay)
	assert.ErrorIs(t, err, model.ErrFetch)
}
