package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/testutil"
)

func TestVolumeCategory(t *testing.T) {
	tests := []struct {
		name    string
		change  float64
		defined bool
		want    int
	}{
		{"sharp drop", -0.35, true, 1},
		{"lower edge of bucket 1", -0.20, true, 1},
		{"moderate drop", -0.15, true, 2},
		{"small drop", -0.05, true, 3},
		{"flat", 0, true, 3},
		{"small rise", 0.10, true, 4},
		{"moderate rise", 0.15, true, 5},
		{"surge", 0.25, true, 6},
		{"undefined", 0, false, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VolumeCategory(tt.change, tt.defined))
		})
	}
}

func TestDeriveStreakAndReturn(t *testing.T) {
	bars := testutil.Pattern(testutil.Day(2024, 1, 1), "uuduu")
	rows, err := Derive(bars)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	streaks := []int{0, 1, 2, 2, 2}
	for i, r := range rows {
		assert.Equal(t, streaks[i], r.UpStreak, "row %d", i)
	}
	assert.True(t, rows[0].IsUp)
	assert.False(t, rows[2].IsUp)
	assert.InDelta(t, 0.01, rows[0].DailyReturn, 1e-9)
	assert.InDelta(t, -0.01, rows[2].DailyReturn, 1e-9)
}

func TestDerivePartialMovingAverages(t *testing.T) {
	start := testutil.Day(2024, 1, 1)
	var bars []models.DailyBar
	for i := 1; i <= 7; i++ {
		bars = append(bars, testutil.Bar(start.AddDate(0, 0, i-1), float64(i), float64(i), 100*float64(i)))
	}
	rows, err := Derive(bars)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, rows[0].MA5, 1e-9)
	assert.InDelta(t, 1.5, rows[1].MA5, 1e-9)
	assert.InDelta(t, 4.5, rows[6].MA5, 1e-9)
	assert.InDelta(t, 4.0, rows[6].MA20, 1e-9)
	assert.InDelta(t, 450.0, rows[6].VolumeMA5, 1e-9)
}

func TestDeriveVolumeChange(t *testing.T) {
	start := testutil.Day(2024, 1, 1)
	bars := []models.DailyBar{
		testutil.Bar(start, 100, 101, 100),
		testutil.Bar(start.AddDate(0, 0, 1), 101, 102, 80),
		testutil.Bar(start.AddDate(0, 0, 2), 102, 103, 0),
		testutil.Bar(start.AddDate(0, 0, 3), 103, 104, 50),
	}
	rows, err := Derive(bars)
	require.NoError(t, err)

	assert.False(t, rows[0].HasVolumeChange)
	assert.Equal(t, 6, RowVolumeCategory(rows[0]))
	assert.True(t, rows[1].HasVolumeChange)
	assert.InDelta(t, -0.2, rows[1].VolumeChange, 1e-9)
	assert.False(t, rows[3].HasVolumeChange, "previous volume is zero")
}

func TestDeriveCalendarLabels(t *testing.T) {
	bars := []models.DailyBar{
		testutil.Bar(testutil.Day(2024, 2, 29), 100, 101, 1),
		testutil.Bar(testutil.Day(2024, 3, 31), 100, 101, 1),
		testutil.Bar(testutil.Day(2024, 4, 1), 100, 101, 1),
	}
	rows, err := Derive(bars)
	require.NoError(t, err)

	assert.True(t, rows[0].IsMonthEnd)
	assert.False(t, rows[0].IsQuarterEnd)
	assert.True(t, rows[1].IsMonthEnd)
	assert.True(t, rows[1].IsQuarterEnd)
	assert.True(t, rows[2].IsMonthStart)
	assert.Equal(t, time.Monday, rows[2].DayOfWeek)
	assert.Equal(t, time.April, rows[2].Month)
}

func TestDeriveRejectsBadInput(t *testing.T) {
	d := testutil.Day(2024, 1, 1)

	_, err := Derive([]models.DailyBar{testutil.Bar(d, 100, 101, 1), testutil.Bar(d, 100, 101, 1)})
	assert.ErrorIs(t, err, models.ErrUnorderedBars)

	_, err = Derive([]models.DailyBar{testutil.Bar(d, 0, 101, 1)})
	assert.ErrorIs(t, err, models.ErrNonPositivePrice)
}

func TestDerivePrefixIsStable(t *testing.T) {
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 80, 7)
	full, err := Derive(bars)
	require.NoError(t, err)

	for _, k := range []int{1, 5, 21, 40} {
		prefix, err := Derive(bars[:k])
		require.NoError(t, err)
		assert.Equal(t, full[:k], prefix, "prefix %d", k)
	}
}

func TestNextDay(t *testing.T) {
	h := testutil.History(Derive, testutil.Pattern(testutil.Day(2024, 1, 1), "duuud"))
	latest, _ := h.Latest()

	row, ok := NextDay(h, testutil.Day(2024, 1, 6))
	require.True(t, ok)
	assert.Equal(t, testutil.Day(2024, 1, 6), row.TradeDate)
	assert.Equal(t, 2, row.UpStreak)
	assert.Equal(t, time.Saturday, row.DayOfWeek)
	assert.Equal(t, latest.MA5, row.MA5)
	assert.Equal(t, latest.Close, row.Close)
	assert.False(t, row.IsUp)

	_, ok = NextDay(models.NewHistory(nil), testutil.Day(2024, 1, 1))
	assert.False(t, ok)
}
