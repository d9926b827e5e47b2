package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/testutil"
)

func generation(d time.Time, source models.WeightSource, w models.Weights) []models.FactorWeight {
	rows := make([]models.FactorWeight, 0, len(models.AllFactors))
	for _, f := range models.AllFactors {
		rows = append(rows, models.FactorWeight{CalculationDate: d, Factor: f, Weight: w[f], WinRate: 0.5, Source: source})
	}
	return rows
}

func TestMemoryBarStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBarStore()

	_, ok, err := s.MaxDate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	bars := testutil.Pattern(testutil.Day(2024, 1, 1), "uud")
	require.NoError(t, s.Upsert(ctx, bars))
	require.NoError(t, s.Upsert(ctx, []models.DailyBar{testutil.Bar(testutil.Day(2024, 1, 2), 10, 11, 5)}))

	got, err := s.Range(ctx, domrepo.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "11", got[1].Close.String())

	max, ok, err := s.MaxDate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testutil.Day(2024, 1, 3), max)

	got, err = s.Range(ctx, domrepo.Between(testutil.Day(2024, 1, 2), testutil.Day(2024, 1, 2)))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMemoryPerformanceStorePredictions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPerformanceStore()
	p := models.FactorProbability{Value: 0.6, Samples: 4, Defined: true}

	for i := 0; i < 5; i++ {
		d := testutil.Day(2024, 1, 1+i)
		for _, f := range models.AllFactors {
			require.NoError(t, s.UpsertPredictions(ctx, []models.FactorPrediction{models.NewFactorPrediction(d, f, p, 1)}))
		}
	}
	// rewrite one key
	require.NoError(t, s.UpsertPredictions(ctx, []models.FactorPrediction{
		models.NewFactorPrediction(testutil.Day(2024, 1, 3), models.FactorStreak, models.FactorProbability{Value: 0.2, Defined: true}, 1),
	}))

	all, err := s.Predictions(ctx, domrepo.DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, models.FactorCalendar, all[0].Factor)

	day3, err := s.Predictions(ctx, domrepo.Between(testutil.Day(2024, 1, 3), testutil.Day(2024, 1, 3)))
	require.NoError(t, err)
	require.Len(t, day3, 4)
	assert.False(t, day3[1].IsCorrect)

	dates, err := s.PredictionDates(ctx, testutil.Day(2024, 1, 4), 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{testutil.Day(2024, 1, 4), testutil.Day(2024, 1, 3)}, dates)
}

func TestMemoryPerformanceStoreGenerations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPerformanceStore()

	g, err := s.LatestGeneration(ctx, testutil.Day(2024, 1, 10))
	require.NoError(t, err)
	assert.Nil(t, g)

	require.NoError(t, s.UpsertWeights(ctx, generation(testutil.Day(2024, 1, 5), models.WeightSourceCalibrated, models.DefaultWeights())))
	require.NoError(t, s.UpsertWeights(ctx, generation(testutil.Day(2024, 1, 8), models.WeightSourceUniform, models.Weights{
		models.FactorCalendar: 0.25, models.FactorStreak: 0.25, models.FactorVolume: 0.25, models.FactorTechnical: 0.25,
	})))

	g, err = s.LatestGeneration(ctx, testutil.Day(2024, 1, 7))
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, testutil.Day(2024, 1, 5), g.CalculationDate)
	assert.Equal(t, models.DefaultWeights(), g.Weights())

	gens, err := s.Generations(ctx, domrepo.DateRange{})
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, models.WeightSourceUniform, gens[1].Source())
	for _, gen := range gens {
		assert.Equal(t, models.FactorCalendar, gen.Rows[0].Factor)
		assert.Equal(t, models.FactorTechnical, gen.Rows[3].Factor)
	}
}
