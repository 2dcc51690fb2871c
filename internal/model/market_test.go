package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSeries_Normalizes(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	s := NewPriceSeries([]PricePoint{
		{Date: day(3, 0), Price: 300},
		{Date: day(1, 0), Price: 100},
		{Date: day(2, 0), Price: 200},
		{Date: day(2, 23), Price: 250}, // same day, later wins
		{Date: day(4, 0), Price: 0},
		{Date: day(5, 0), Price: math.NaN()},
		{Date: day(6, 0), Price: -1},
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{100, 250, 300}, s.Closes(10))
	assert.Equal(t, []float64{250, 300}, s.Closes(2))
	assert.Equal(t, day(1, 0), s.Points[0].Date)
}

func TestNewPriceSeries_MissingValueDropsDay(t *testing.T) {
	d := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewPriceSeries([]PricePoint{
		{Date: d, Price: 100},
		{Date: d.Add(time.Hour), Price: 0},
	})
	assert.Zero(t, s.Len())
}

func TestAction_Ordering(t *testing.T) {
	assert.True(t, ActionThreeX > ActionTwoX)
	assert.True(t, ActionTwoX > ActionOneX)
	assert.True(t, ActionOneX > ActionPause)
}

func TestAction_Text(t *testing.T) {
	for _, a := range []Action{ActionPause, ActionOneX, ActionTwoX, ActionThreeX} {
		b, err := a.MarshalText()
		require.NoError(t, err)
		var got Action
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("4x")
	assert.Error(t, err)
	_, err = Action(9).MarshalText()
	assert.Error(t, err)
}
