package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/repository"
	"FactorEdge/internal/services/calibration"
	"FactorEdge/internal/services/factors"
	"FactorEdge/internal/services/scoring"
	"FactorEdge/pkg/cache"
	"FactorEdge/pkg/logger"
	"FactorEdge/pkg/metrics"
)

type capturePublisher struct {
	mu    sync.Mutex
	preds []models.CompositePrediction
	err   error
}

func (c *capturePublisher) PublishPrediction(_ context.Context, p models.CompositePrediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.preds = append(c.preds, p)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

type engine struct {
	bars     *repository.MemoryBarStore
	perf     *repository.MemoryPerformanceStore
	lock     *cache.MemoryCache
	pub      *capturePublisher
	tracker  *PerformanceTracker
	recal    *WeightRecalibrator
	reports  *Reports
	backtest *BacktestEvaluator
	cycle    *DailyCycle
}

func newEngine(t *testing.T, bars []models.DailyBar, policy calibration.FallbackPolicy) *engine {
	t.Helper()
	ctx := context.Background()
	e := &engine{
		bars: repository.NewMemoryBarStore(),
		perf: repository.NewMemoryPerformanceStore(),
		lock: cache.NewMemoryCache(),
		pub:  &capturePublisher{},
	}
	t.Cleanup(func() { e.lock.Close() })
	require.NoError(t, e.bars.Upsert(ctx, bars))

	l := logger.Nop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	scorer, err := scoring.NewScorer(models.DefaultWeights())
	require.NoError(t, err)
	est := factors.Default()

	loader := NewHistoryLoader(e.bars)
	e.tracker = NewPerformanceTracker(loader, e.perf, est, 60, m, l)
	e.recal = NewWeightRecalibrator(e.perf, 30, calibration.DefaultSteepness, policy, m, l)
	e.reports = NewReports(loader, e.perf, scorer, est, 60, 30)
	e.backtest = NewBacktestEvaluator(loader, e.perf, scorer, est, l)
	e.cycle = NewDailyCycle(loader, e.tracker, e.recal, e.reports, e.pub, e.lock, time.Minute, m, l)
	return e
}
