package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/testutil"
)

func scored(d time.Time, composite float64, up bool) models.ScoredComposite {
	return models.ScoredComposite{
		Prediction: models.CompositePrediction{TradeDate: d, Composite: composite, Signal: models.SignalFor(composite)},
		IsUp:       up,
	}
}

func TestBuckets(t *testing.T) {
	d := testutil.Day(2024, 1, 1)
	in := []models.ScoredComposite{
		scored(d, 0.75, true),
		scored(d.AddDate(0, 0, 1), 0.72, false),
		scored(d.AddDate(0, 0, 2), 0.55, true),
		scored(d.AddDate(0, 0, 3), 0.35, false),
		scored(d.AddDate(0, 0, 4), 0.35, true),
	}
	got := Buckets(in)
	require.Len(t, got, 6)
	for i, s := range models.AllSignals {
		assert.Equal(t, s, got[i].Signal)
	}

	strong := got[0]
	assert.Equal(t, 2, strong.Samples)
	assert.InDelta(t, 0.5, strong.ActualUpRate, 1e-12)
	assert.InDelta(t, 0.5, strong.DirectionalAccuracy, 1e-12)

	sell := got[4]
	assert.Equal(t, models.SignalSell, sell.Signal)
	assert.Equal(t, 2, sell.Samples)
	assert.InDelta(t, 0.5, sell.DirectionalAccuracy, 1e-12)

	assert.Equal(t, 0, got[1].Samples)
	assert.Equal(t, 0.0, got[1].ActualUpRate)
}

func TestWeeklyGroupsByISOWeek(t *testing.T) {
	// 2024-12-30 is the Monday of ISO week 1 of 2025.
	in := []models.ScoredComposite{
		scored(testutil.Day(2025, 1, 6), 0.6, false),
		scored(testutil.Day(2024, 12, 30), 0.6, true),
		scored(testutil.Day(2025, 1, 1), 0.4, true),
		scored(testutil.Day(2025, 1, 5), 0.4, false),
	}
	got := Weekly(in)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 1, first.Week)
	assert.Equal(t, testutil.Day(2024, 12, 30), first.WeekStart)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.Correct)
	assert.InDelta(t, 2.0/3.0, first.AccuracyRate, 1e-12)
	assert.InDelta(t, 1.4/3.0, first.MeanPredicted, 1e-12)
	assert.InDelta(t, 2.0/3.0, first.ActualUpRate, 1e-12)

	second := got[1]
	assert.Equal(t, 2, second.Week)
	assert.Equal(t, 1, second.Total)
	assert.Equal(t, 0, second.Correct)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, Pearson([]float64{0.5, 0.5}, []float64{0, 1}))
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{1}))
	assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1}))
}

func TestFactorPerformance(t *testing.T) {
	d := testutil.Day(2024, 1, 1)
	pred := func(i int, f models.Factor, p float64, actual int) models.FactorPrediction {
		return models.NewFactorPrediction(d.AddDate(0, 0, i), f, models.FactorProbability{Value: p, Defined: true}, actual)
	}
	preds := []models.FactorPrediction{
		pred(0, models.FactorStreak, 0.8, 1),
		pred(1, models.FactorStreak, 0.5, 0),
		pred(2, models.FactorStreak, 0.2, 0),
		pred(3, models.FactorStreak, 0.7, 0),
	}
	weights := models.DefaultWeights()
	trailing := map[models.Factor]float64{models.FactorStreak: 0.6}

	got := FactorPerformance(preds, weights, trailing)
	require.Len(t, got, 4)
	streak := got[1]
	assert.Equal(t, models.FactorStreak, streak.Factor)
	assert.Equal(t, 4, streak.Samples)
	// 0.5 calls up, so the flat prediction on a down-day is wrong.
	assert.InDelta(t, 0.5, streak.AccuracyRate, 1e-12)
	assert.InDelta(t, 2.0/3.0, streak.DirectionalAccuracy, 1e-12)
	assert.InDelta(t, (0.3+0+0.3+0.2)/4, streak.MeanConfidence, 1e-12)
	assert.InDelta(t, 30, streak.WeightPct, 1e-9)
	assert.InDelta(t, 60, streak.TrailingWinRatePct, 1e-9)
	assert.Greater(t, streak.Correlation, 0.0)

	empty := got[0]
	assert.Equal(t, 0, empty.Samples)
	assert.Equal(t, 0.0, empty.AccuracyRate)
	assert.Equal(t, 0.0, empty.Correlation)
}
