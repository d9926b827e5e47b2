package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/services/calibration"
	"FactorEdge/internal/testutil"
)

func TestCycleRun(t *testing.T) {
	ctx := context.Background()
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 90, 23)
	e := newEngine(t, bars, calibration.FallbackCarryForward)
	max := bars[len(bars)-1].TradeDate

	res, err := e.cycle.Run(ctx, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, max, res.AsOf)
	assert.Equal(t, 60*4, res.Tracked)
	assert.Equal(t, max, res.Generation.CalculationDate)
	assert.Equal(t, models.WeightSourceCalibrated, res.Generation.Source())
	assert.Equal(t, max.AddDate(0, 0, 1), res.NextDay.TradeDate)
	require.NotNil(t, res.NextDay.WeightsAsOf)
	assert.Equal(t, max, *res.NextDay.WeightsAsOf)
	assert.True(t, res.Published)
	require.Len(t, e.pub.preds, 1)
	assert.Equal(t, res.NextDay, e.pub.preds[0])

	ok, err := e.lock.TryLock(ctx, cycleLockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock is released after the run")
}

func TestCycleRunAsOfPastDate(t *testing.T) {
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 90, 23)
	e := newEngine(t, bars, calibration.FallbackCarryForward)

	res, err := e.cycle.Run(context.Background(), bars[70].TradeDate)
	require.NoError(t, err)
	assert.Equal(t, bars[70].TradeDate, res.AsOf)
	assert.Equal(t, bars[71].TradeDate, res.NextDay.TradeDate)
}

func TestCycleRejectsConcurrentRun(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, testutil.Walk(testutil.Day(2024, 1, 1), 10, 1), calibration.FallbackCarryForward)

	ok, err := e.lock.TryLock(ctx, cycleLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.cycle.Run(ctx, time.Time{})
	assert.ErrorIs(t, err, models.ErrCycleInProgress)
	_, err = e.cycle.Rerun(ctx, testutil.Day(2024, 1, 2), testutil.Day(2024, 1, 5))
	assert.ErrorIs(t, err, models.ErrCycleInProgress)
}

func TestCycleEmptyHistory(t *testing.T) {
	e := newEngine(t, nil, calibration.FallbackCarryForward)
	_, err := e.cycle.Run(context.Background(), time.Time{})
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestCyclePublishFailureDoesNotFailRun(t *testing.T) {
	e := newEngine(t, testutil.Walk(testutil.Day(2024, 1, 1), 20, 4), calibration.FallbackCarryForward)
	e.pub.err = errors.New("broker down")

	res, err := e.cycle.Run(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.False(t, res.Published)
}

func TestCycleRerun(t *testing.T) {
	ctx := context.Background()
	bars := testutil.Walk(testutil.Day(2024, 1, 1), 40, 8)
	e := newEngine(t, bars, calibration.FallbackCarryForward)

	res, err := e.cycle.Rerun(ctx, testutil.Day(2024, 1, 31), testutil.Day(2024, 2, 15))
	require.NoError(t, err)
	assert.Equal(t, 10*4, res.Tracked, "only stored days are tracked")
	require.Len(t, res.Generations, 10)
	assert.Equal(t, testutil.Day(2024, 1, 31), res.Generations[0].CalculationDate)
	assert.Equal(t, testutil.Day(2024, 2, 9), res.Generations[9].CalculationDate)

	_, err = e.cycle.Rerun(ctx, testutil.Day(2024, 2, 1), testutil.Day(2024, 1, 1))
	assert.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestCycleDisabledPublishingIsNotPublished(t *testing.T) {
	e := newEngine(t, testutil.Walk(testutil.Day(2024, 1, 1), 20, 4), calibration.FallbackCarryForward)
	e.pub.err = models.ErrPublishingDisabled

	res, err := e.cycle.Run(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.False(t, res.Published)
}

func TestCycleCompletionHooks(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, testutil.Walk(testutil.Day(2024, 1, 1), 40, 8), calibration.FallbackCarryForward)
	calls := 0
	e.cycle.OnComplete(func() { calls++ })

	_, err := e.cycle.Run(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = e.cycle.Rerun(ctx, testutil.Day(2024, 1, 31), testutil.Day(2024, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = e.cycle.Rerun(ctx, testutil.Day(2024, 2, 5), testutil.Day(2024, 1, 1))
	require.Error(t, err)
	assert.Equal(t, 2, calls, "failed runs do not fire hooks")
}

func TestCycleFailureSkipsHooks(t *testing.T) {
	e := newEngine(t, nil, calibration.FallbackCarryForward)
	calls := 0
	e.cycle.OnComplete(func() { calls++ })

	_, err := e.cycle.Run(context.Background(), time.Time{})
	require.ErrorIs(t, err, models.ErrNoData)
	assert.Zero(t, calls)
}
