package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBar is one closed daily OHLCV bar.
type DailyBar struct {
	TradeDate time.Time       `json:"trade_date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// FeatureRow is a DailyBar plus the fields derived from it and the bars before it.
type FeatureRow struct {
	Bar       DailyBar
	TradeDate time.Time

	Close       float64
	DailyReturn float64
	IsUp        bool
	DailyRange  float64

	MA5       float64
	MA20      float64
	VolumeMA5 float64

	UpStreak        int
	VolumeChange    float64
	HasVolumeChange bool

	Month        time.Month
	Day          int
	DayOfWeek    time.Weekday
	IsMonthStart bool
	IsMonthEnd   bool
	IsQuarterEnd bool
}

// Outcome returns 1 for an up-day and 0 otherwise.
func (r FeatureRow) Outcome() int {
	if r.IsUp {
		return 1
	}
	return 0
}

// CalendarKey identifies the (month, day, weekday) combination of a date.
type CalendarKey struct {
	Month     time.Month
	Day       int
	DayOfWeek time.Weekday
}

// CalendarOf returns the calendar key of a date.
func CalendarOf(t time.Time) CalendarKey {
	return CalendarKey{Month: t.Month(), Day: t.Day(), DayOfWeek: t.Weekday()}
}

// Calendar returns the row's calendar key.
func (r FeatureRow) Calendar() CalendarKey {
	return CalendarKey{Month: r.Month, Day: r.Day, DayOfWeek: r.DayOfWeek}
}

// TradeDay truncates t to a UTC calendar day.
func TradeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
