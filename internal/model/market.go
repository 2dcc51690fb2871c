package model

import (
	"math"
	"sort"
	"time"
)

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries holds daily closes in ascending date order, one per calendar day,
// all strictly positive.
type PriceSeries struct {
	Points []PricePoint
}

// NewPriceSeries normalizes raw points into a PriceSeries. Dates are truncated
// to the UTC calendar day, later points win over earlier ones for the same day,
// and non-positive or non-finite prices are dropped.
func NewPriceSeries(raw []PricePoint) PriceSeries {
	byDate := make(map[time.Time]float64, len(raw))
	for _, p := range raw {
		byDate[CalendarDay(p.Date)] = p.Price
	}

	points := make([]PricePoint, 0, len(byDate))
	for d, price := range byDate {
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		points = append(points, PricePoint{Date: d, Price: price})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return PriceSeries{Points: points}
}

// Len returns the number of usable points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the prices of the last n points (all points if n exceeds Len).
func (s PriceSeries) Closes(n int) []float64 {
	start := len(s.Points) - n
	if start < 0 {
		start = 0
	}
	closes := make([]float64, 0, len(s.Points)-start)
	for _, p := range s.Points[start:] {
		closes = append(closes, p.Price)
	}
	return closes
}

// CalendarDay truncates t to midnight UTC of its UTC date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a calendar day as ISO-8601 (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// MarketPulse is a cross-exchange view of the market used to sanity-check the
// spot price.
type MarketPulse struct {
	ReferencePrice float64
	Change24h      float64 // percent
	Volume24h      float64 // USD
	Source         string
}
