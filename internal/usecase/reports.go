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
	"FactorEdge/internal/services/features"
	"FactorEdge/internal/services/scoring"
)

// Reports answers the read-side queries: composites, factor performance
// and weight history.
type Reports struct {
	history        *HistoryLoader
	store          domrepo.PerformanceStore
	scorer         *scoring.Scorer
	estimators     []service.FactorEstimator
	trackingWindow int
	recalWindow    int
}

func NewReports(history *HistoryLoader, store domrepo.PerformanceStore, scorer *scoring.Scorer, estimators []service.FactorEstimator, trackingWindow, recalWindow int) *Reports {
	return &Reports{
		history:        history,
		store:          store,
		scorer:         scorer,
		estimators:     estimators,
		trackingWindow: trackingWindow,
		recalWindow:    recalWindow,
	}
}

// generationBefore returns the generation in force on d.
func (r *Reports) generationBefore(ctx context.Context, d time.Time) (*models.WeightGeneration, error) {
	g, err := r.store.LatestGeneration(ctx, d.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("weights for %s: %w", d.Format(time.DateOnly), err)
	}
	return g, nil
}

// Latest scores the most recent stored day.
func (r *Reports) Latest(ctx context.Context) (models.CompositePrediction, error) {
	h, err := r.history.Snapshot(ctx, time.Time{})
	if err != nil {
		return models.CompositePrediction{}, err
	}
	row, ok := h.Latest()
	if !ok {
		return models.CompositePrediction{}, models.ErrNoData
	}
	gen, err := r.generationBefore(ctx, row.TradeDate)
	if err != nil {
		return models.CompositePrediction{}, err
	}
	return r.scorer.Score(row.TradeDate, factors.EstimateRow(h, row, r.estimators), gen)
}

// NextDay scores the day after the latest stored bar.
func (r *Reports) NextDay(ctx context.Context) (models.CompositePrediction, error) {
	h, err := r.history.Snapshot(ctx, time.Time{})
	if err != nil {
		return models.CompositePrediction{}, err
	}
	return r.NextDayFor(ctx, h)
}

// NextDayFor scores the day after the last row of h.
func (r *Reports) NextDayFor(ctx context.Context, h models.History) (models.CompositePrediction, error) {
	latest, ok := h.Latest()
	if !ok {
		return models.CompositePrediction{}, models.ErrNoData
	}
	next := latest.TradeDate.AddDate(0, 0, 1)
	row, _ := features.NextDay(h, next)
	gen, err := r.generationBefore(ctx, next)
	if err != nil {
		return models.CompositePrediction{}, err
	}
	return r.scorer.Score(next, factors.EstimateRow(h, row, r.estimators), gen)
}

// FactorPerformance reports each factor over the window most recent
// tracked days on or before asOf. A zero asOf means the latest bar; a
// non-positive window uses the tracking window.
func (r *Reports) FactorPerformance(ctx context.Context, asOf time.Time, window int) ([]models.FactorPerformance, error) {
	if asOf.IsZero() {
		h, err := r.history.Snapshot(ctx, time.Time{})
		if err != nil {
			return nil, err
		}
		latest, ok := h.Latest()
		if !ok {
			return nil, models.ErrNoData
		}
		asOf = latest.TradeDate
	}
	if window <= 0 {
		window = r.trackingWindow
	}

	dates, err := r.store.PredictionDates(ctx, asOf, window)
	if err != nil {
		return nil, fmt.Errorf("prediction dates: %w", err)
	}
	var preds []models.FactorPrediction
	if len(dates) > 0 {
		preds, err = r.store.Predictions(ctx, domrepo.Between(dates[len(dates)-1], dates[0]))
		if err != nil {
			return nil, fmt.Errorf("predictions: %w", err)
		}
	}

	rates, err := WinRates(ctx, r.store, asOf, r.recalWindow)
	if err != nil {
		return nil, err
	}
	winRates := make(map[models.Factor]float64, len(models.AllFactors))
	for _, f := range models.AllFactors {
		winRates[f] = rates[f].Rate()
	}

	weights := r.scorer.Defaults()
	gen, err := r.store.LatestGeneration(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("current weights: %w", err)
	}
	if gen != nil {
		weights = gen.Weights()
	}
	return evaluation.FactorPerformance(preds, weights, winRates), nil
}

// WeightsHistory lists the generations in rng.
func (r *Reports) WeightsHistory(ctx context.Context, rng domrepo.DateRange) ([]models.WeightGeneration, error) {
	return r.store.Generations(ctx, rng)
}
