package usecase

import (
	"context"
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/domain/service"
	"FactorEdge/internal/services/evaluation"
	"FactorEdge/internal/services/factors"
	"FactorEdge/internal/services/scoring"
	"FactorEdge/pkg/logger"
)

// BacktestEvaluator replays the composite over history using the weights
// that were in force on each day. It never writes.
type BacktestEvaluator struct {
	history    *HistoryLoader
	weights    domrepo.WeightStore
	scorer     *scoring.Scorer
	estimators []service.FactorEstimator
	l          *logger.Logger
}

func NewBacktestEvaluator(history *HistoryLoader, weights domrepo.WeightStore, scorer *scoring.Scorer, estimators []service.FactorEstimator, l *logger.Logger) *BacktestEvaluator {
	return &BacktestEvaluator{
		history:    history,
		weights:    weights,
		scorer:     scorer,
		estimators: estimators,
		l:          l.With(logger.String("component", "backtest")),
	}
}

// Replay scores every day on or before asOf that has at least one prior day.
func (e *BacktestEvaluator) Replay(ctx context.Context, asOf time.Time) ([]models.ScoredComposite, error) {
	start := time.Now()
	h, err := e.history.Snapshot(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if h.Len() < 2 {
		return nil, nil
	}
	latest, _ := h.Latest()
	gens, err := e.weights.Generations(ctx, domrepo.Through(latest.TradeDate))
	if err != nil {
		return nil, fmt.Errorf("load generations: %w", err)
	}
	timeline := scoring.NewTimeline(gens)
	panel := factors.Evaluate(h, e.estimators)

	out := make([]models.ScoredComposite, 0, h.Len()-1)
	for i := 1; i < h.Len(); i++ {
		row := h.At(i)
		c, err := e.scorer.Score(row.TradeDate, panel.Day(i), timeline.Before(row.TradeDate))
		if err != nil {
			return nil, err
		}
		out = append(out, models.ScoredComposite{Prediction: c, IsUp: row.IsUp})
	}
	e.l.Debug("backtest replayed",
		logger.Int("days", len(out)),
		logger.Int("generations", len(gens)),
		logger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

// Buckets reports accuracy per signal over the full replay.
func (e *BacktestEvaluator) Buckets(ctx context.Context, asOf time.Time) ([]models.BucketAccuracy, error) {
	scored, err := e.Replay(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return evaluation.Buckets(scored), nil
}

// Weekly reports ISO-week accuracy over the most recent scored rows through
// asOf, at most days of them.
func (e *BacktestEvaluator) Weekly(ctx context.Context, asOf time.Time, days int) ([]models.WeeklyAccuracy, error) {
	scored, err := e.Replay(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return evaluation.Weekly(trailing(scored, days)), nil
}

// trailing keeps the last n scored days of the replay.
func trailing(scored []models.ScoredComposite, n int) []models.ScoredComposite {
	if n <= 0 || len(scored) <= n {
		return scored
	}
	return scored[len(scored)-n:]
}
