package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/services/calibration"
	"FactorEdge/internal/testutil"
)

func TestReplayUsesGenerationInForce(t *testing.T) {
	ctx := context.Background()
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 30, 17)
	e := newEngine(t, bars, calibration.FallbackUniform)

	_, err := e.recal.Recalibrate(ctx, testutil.Day(2024, 1, 15))
	require.NoError(t, err)

	scored, err := e.backtest.Replay(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, scored, 29)
	assert.Equal(t, bars[1].TradeDate, scored[0].Prediction.TradeDate)

	for _, s := range scored {
		d := s.Prediction.TradeDate
		if d.After(testutil.Day(2024, 1, 15)) {
			assert.Equal(t, models.WeightSourceUniform, s.Prediction.WeightsSource, d)
		} else {
			assert.Equal(t, models.WeightSourceDefault, s.Prediction.WeightsSource, d)
		}
	}
}

func TestBacktestReports(t *testing.T) {
	ctx := context.Background()
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 120, 19)
	e := newEngine(t, bars, calibration.FallbackCarryForward)

	buckets, err := e.backtest.Buckets(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, buckets, len(models.AllSignals))
	total := 0
	for _, b := range buckets {
		total += b.Samples
	}
	assert.Equal(t, 119, total)

	weeks, err := e.backtest.Weekly(ctx, time.Time{}, 28)
	require.NoError(t, err)
	days := 0
	for _, w := range weeks {
		days += w.Total
		assert.Equal(t, time.Monday, w.WeekStart.Weekday())
	}
	assert.Equal(t, 28, days)
}

func TestWeeklyCountsTradingDaysNotCalendarDays(t *testing.T) {
	var bars []models.DailyBar
	for _, b := range testutil.Walk(testutil.Day(2024, 1, 1), 200, 29) {
		if wd := b.TradeDate.Weekday(); wd != time.Saturday && wd != time.Sunday {
			bars = append(bars, b)
		}
	}
	e := newEngine(t, bars, calibration.FallbackCarryForward)

	weeks, err := e.backtest.Weekly(context.Background(), time.Time{}, 60)
	require.NoError(t, err)
	days := 0
	for _, w := range weeks {
		days += w.Total
	}
	assert.Equal(t, 60, days)
}

func TestTrailingKeepsLastRows(t *testing.T) {
	scored := make([]models.ScoredComposite, 5)
	for i := range scored {
		scored[i].Prediction.TradeDate = testutil.Day(2024, 1, 1+i*3)
	}
	got := trailing(scored, 2)
	require.Len(t, got, 2)
	assert.Equal(t, testutil.Day(2024, 1, 10), got[0].Prediction.TradeDate)
	assert.Len(t, trailing(scored, 0), 5)
	assert.Len(t, trailing(scored, 9), 5)
}

func TestReplayShortHistory(t *testing.T) {
	e := newEngine(t, testutil.Walk(testutil.Day(2024, 1, 1), 1, 1), calibration.FallbackCarryForward)
	scored, err := e.backtest.Replay(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, scored)
}
