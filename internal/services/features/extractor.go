package features

import (
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
)

const (
	// ShortMAWindow covers the current row and up to 5 preceding rows.
	ShortMAWindow = 6
	// LongMAWindow covers the current row and up to 20 preceding rows.
	LongMAWindow = 21
	// StreakWindow is how many preceding rows up_streak inspects.
	StreakWindow = 3
)

// Derive computes feature rows for bars ordered by trade date.
// Early rows use partial windows; no field of row i reads bars after i.
func Derive(bars []models.DailyBar) ([]models.FeatureRow, error) {
	out := make([]models.FeatureRow, 0, len(bars))
	closes := make([]float64, 0, len(bars))
	volumes := make([]float64, 0, len(bars))
	for i, b := range bars {
		date := models.TradeDay(b.TradeDate)
		if i > 0 && !date.After(out[i-1].TradeDate) {
			return nil, fmt.Errorf("%w: %s after %s", models.ErrUnorderedBars,
				date.Format(time.DateOnly), out[i-1].TradeDate.Format(time.DateOnly))
		}
		if !b.Open.IsPositive() || !b.Close.IsPositive() {
			return nil, fmt.Errorf("%w: %s", models.ErrNonPositivePrice, date.Format(time.DateOnly))
		}

		open := b.Open.InexactFloat64()
		closePx := b.Close.InexactFloat64()
		vol := b.Volume.InexactFloat64()
		closes = append(closes, closePx)
		volumes = append(volumes, vol)

		row := models.FeatureRow{
			Bar:         b,
			TradeDate:   date,
			Close:       closePx,
			DailyReturn: (closePx - open) / open,
			IsUp:        b.Close.GreaterThan(b.Open),
			DailyRange:  (b.High.InexactFloat64() - b.Low.InexactFloat64()) / open,
			MA5:         trailingMean(closes, ShortMAWindow),
			MA20:        trailingMean(closes, LongMAWindow),
			VolumeMA5:   trailingMean(volumes, ShortMAWindow),
			UpStreak:    countUp(out, StreakWindow),
		}
		if i > 0 && volumes[i-1] != 0 {
			row.VolumeChange = vol/volumes[i-1] - 1
			row.HasVolumeChange = true
		}
		applyCalendar(&row, date)
		out = append(out, row)
	}
	return out, nil
}

// NextDay projects a row for date, which must follow every row of h.
// Calendar labels come from date, up_streak from the last StreakWindow
// rows of h. Price and volume fields are carried from the latest row.
func NextDay(h models.History, date time.Time) (models.FeatureRow, bool) {
	latest, ok := h.Latest()
	if !ok {
		return models.FeatureRow{}, false
	}
	date = models.TradeDay(date)
	row := latest
	row.Bar = models.DailyBar{TradeDate: date}
	row.TradeDate = date
	row.IsUp = false
	row.DailyReturn = 0
	row.DailyRange = 0
	row.UpStreak = countUp(h.Tail(latest.TradeDate, StreakWindow), StreakWindow)
	applyCalendar(&row, date)
	return row, true
}

// VolumeCategory buckets a volume change into categories 1..6.
// Undefined changes fall into category 6.
func VolumeCategory(change float64, defined bool) int {
	if !defined {
		return 6
	}
	switch {
	case change <= -0.20:
		return 1
	case change <= -0.10:
		return 2
	case change <= 0:
		return 3
	case change <= 0.10:
		return 4
	case change <= 0.20:
		return 5
	default:
		return 6
	}
}

// RowVolumeCategory returns the volume category of a feature row.
func RowVolumeCategory(r models.FeatureRow) int {
	return VolumeCategory(r.VolumeChange, r.HasVolumeChange)
}

func applyCalendar(row *models.FeatureRow, date time.Time) {
	row.Month = date.Month()
	row.Day = date.Day()
	row.DayOfWeek = date.Weekday()
	row.IsMonthStart = date.Day() == 1
	row.IsMonthEnd = date.AddDate(0, 0, 1).Month() != date.Month()
	switch date.Month() {
	case time.March, time.June, time.September, time.December:
		row.IsQuarterEnd = row.IsMonthEnd
	default:
		row.IsQuarterEnd = false
	}
}

// trailingMean averages the last n values (fewer if not enough exist).
func trailingMean(xs []float64, n int) float64 {
	start := len(xs) - n
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, x := range xs[start:] {
		sum += x
	}
	return sum / float64(len(xs)-start)
}

// countUp counts up-days among the last n rows.
func countUp(rows []models.FeatureRow, n int) int {
	start := len(rows) - n
	if start < 0 {
		start = 0
	}
	c := 0
	for _, r := range rows[start:] {
		if r.IsUp {
			c++
		}
	}
	return c
}
