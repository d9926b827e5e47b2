package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/testutil"
)

func rates(cal, streak, vol, tech WinRate) map[models.Factor]WinRate {
	return map[models.Factor]WinRate{
		models.FactorCalendar:  cal,
		models.FactorStreak:    streak,
		models.FactorVolume:    vol,
		models.FactorTechnical: tech,
	}
}

func TestTally(t *testing.T) {
	d := testutil.Day(2024, 1, 1)
	preds := []models.FactorPrediction{
		{TradeDate: d, Factor: models.FactorStreak, IsCorrect: true},
		{TradeDate: d.AddDate(0, 0, 1), Factor: models.FactorStreak, IsCorrect: false},
		{TradeDate: d.AddDate(0, 0, 2), Factor: models.FactorStreak, IsCorrect: true},
		{TradeDate: d, Factor: models.FactorVolume, IsCorrect: false},
	}
	got := Tally(preds)
	assert.Equal(t, WinRate{Correct: 2, Total: 3}, got[models.FactorStreak])
	assert.Equal(t, WinRate{Correct: 0, Total: 1}, got[models.FactorVolume])
	assert.Equal(t, 0.5, got[models.FactorCalendar].Rate())
}

func TestCalibrateNormalises(t *testing.T) {
	d := testutil.Day(2024, 2, 1)
	gen, err := Calibrate(d, rates(
		WinRate{Correct: 18, Total: 30},
		WinRate{Correct: 15, Total: 30},
		WinRate{Correct: 12, Total: 30},
		WinRate{Correct: 21, Total: 30},
	), DefaultSteepness)
	require.NoError(t, err)

	require.Len(t, gen.Rows, 4)
	w := gen.Weights()
	require.NoError(t, w.Validate())
	assert.InDelta(t, 1, w.Sum(), 1e-6)
	assert.Greater(t, w[models.FactorTechnical], w[models.FactorCalendar])
	assert.Greater(t, w[models.FactorCalendar], w[models.FactorStreak])
	assert.Greater(t, w[models.FactorStreak], w[models.FactorVolume])

	row, ok := gen.Row(models.FactorTechnical)
	require.True(t, ok)
	assert.Equal(t, d, row.CalculationDate)
	assert.InDelta(t, 0.7, row.WinRate, 1e-12)
	assert.Equal(t, 30, row.Samples)
	assert.Equal(t, models.WeightSourceCalibrated, row.Source)
}

func TestCalibrateEqualRatesGiveUniformWeights(t *testing.T) {
	wr := WinRate{Correct: 10, Total: 20}
	gen, err := Calibrate(testutil.Day(2024, 2, 1), rates(wr, wr, wr, wr), DefaultSteepness)
	require.NoError(t, err)
	for _, r := range gen.Rows {
		assert.InDelta(t, 0.25, r.Weight, 1e-12)
	}
}

func TestCalibrateWeightMonotonic(t *testing.T) {
	other := WinRate{Correct: 15, Total: 30}
	prev := -1.0
	for correct := 0; correct <= 30; correct++ {
		gen, err := Calibrate(testutil.Day(2024, 2, 1),
			rates(WinRate{Correct: correct, Total: 30}, other, other, other), DefaultSteepness)
		require.NoError(t, err)
		w := gen.Weights()[models.FactorCalendar]
		assert.Greater(t, w, prev, "correct=%d", correct)
		prev = w
	}
}

func TestCalibrateInsufficientData(t *testing.T) {
	wr := WinRate{Correct: 5, Total: 10}
	_, err := Calibrate(testutil.Day(2024, 2, 1), rates(wr, wr, WinRate{}, wr), DefaultSteepness)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Calibrate(testutil.Day(2024, 2, 1), map[models.Factor]WinRate{models.FactorCalendar: wr}, DefaultSteepness)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRawWeight(t *testing.T) {
	assert.InDelta(t, 0.5, RawWeight(0.5, DefaultSteepness), 1e-12)
	assert.Greater(t, RawWeight(0.6, DefaultSteepness), RawWeight(0.55, DefaultSteepness))
	assert.InDelta(t, 1-RawWeight(0.7, DefaultSteepness), RawWeight(0.3, DefaultSteepness), 1e-12)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("carry_forward")
	require.NoError(t, err)
	assert.Equal(t, FallbackCarryForward, p)

	p, err = ParseFallbackPolicy("uniform")
	require.NoError(t, err)
	assert.Equal(t, FallbackUniform, p)

	_, err = ParseFallbackPolicy("zero")
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	prevDate := testutil.Day(2024, 2, 1)
	date := testutil.Day(2024, 2, 2)
	wr := WinRate{Correct: 6, Total: 10}
	prev, err := Calibrate(prevDate, rates(wr, WinRate{Correct: 3, Total: 10}, wr, wr), DefaultSteepness)
	require.NoError(t, err)
	partial := rates(wr, wr, WinRate{}, wr)

	t.Run("carry forward re-dates previous", func(t *testing.T) {
		gen := FallbackCarryForward.Fallback(date, partial, &prev)
		assert.Equal(t, date, gen.CalculationDate)
		assert.Equal(t, models.WeightSourceCarriedForward, gen.Source())
		assert.Equal(t, prev.Weights(), gen.Weights())
		for _, r := range gen.Rows {
			assert.Equal(t, date, r.CalculationDate)
		}
	})

	t.Run("carry forward without previous is uniform", func(t *testing.T) {
		gen := FallbackCarryForward.Fallback(date, partial, nil)
		assert.Equal(t, models.WeightSourceUniform, gen.Source())
		for _, r := range gen.Rows {
			assert.Equal(t, 0.25, r.Weight)
			assert.Equal(t, 0.5, r.WinRate)
		}
	})

	t.Run("uniform ignores previous", func(t *testing.T) {
		gen := FallbackUniform.Fallback(date, partial, &prev)
		assert.Equal(t, models.WeightSourceUniform, gen.Source())
		require.NoError(t, gen.Weights().Validate())
		row, _ := gen.Row(models.FactorStreak)
		assert.Equal(t, 10, row.Samples)
	})
}
