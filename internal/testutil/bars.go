// Package testutil builds bar fixtures for package tests.
package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"FactorEdge/internal/domain/models"
)

// Day returns the UTC trade date y-m-d.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Bar builds a bar with high/low bracketing open and close.
func Bar(date time.Time, open, close, volume float64) models.DailyBar {
	hi, lo := open, close
	if close > open {
		hi, lo = close, open
	}
	return models.DailyBar{
		TradeDate: date,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(hi * 1.01),
		Low:       decimal.NewFromFloat(lo * 0.99),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromFloat(volume),
	}
}

// Pattern builds consecutive daily bars from start. 'u' is an up-day,
// 'd' a down-day. Volume cycles through volumes when given.
func Pattern(start time.Time, pattern string, volumes ...float64) []models.DailyBar {
	bars := make([]models.DailyBar, 0, len(pattern))
	px := 100.0
	for i, c := range pattern {
		vol := 1000.0
		if len(volumes) > 0 {
			vol = volumes[i%len(volumes)]
		}
		open := px
		closePx := px * 0.99
		if c == 'u' {
			closePx = px * 1.01
		}
		bars = append(bars, Bar(start.AddDate(0, 0, i), open, closePx, vol))
		px = closePx
	}
	return bars
}

// Walk builds n bars from a deterministic pseudo-random walk.
func Walk(start time.Time, n int, seed uint32) []models.DailyBar {
	bars := make([]models.DailyBar, 0, n)
	px := 100.0
	state := seed | 1
	next := func() float64 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return float64(state%10000) / 10000
	}
	for i := 0; i < n; i++ {
		open := px
		closePx := open * (0.97 + 0.06*next())
		vol := 500 + 1000*next()
		bars = append(bars, Bar(start.AddDate(0, 0, i), open, closePx, vol))
		px = closePx
	}
	return bars
}

// History derives a history from bars, panicking on invalid fixtures.
func History(derive func([]models.DailyBar) ([]models.FeatureRow, error), bars []models.DailyBar) models.History {
	rows, err := derive(bars)
	if err != nil {
		panic(err)
	}
	return models.NewHistory(rows)
}
