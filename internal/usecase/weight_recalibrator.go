package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/services/calibration"
	"FactorEdge/pkg/logger"
)

// WeightRecalibrator turns trailing factor win-rates into a new weight generation.
type WeightRecalibrator struct {
	store     domrepo.PerformanceStore
	window    int
	steepness float64
	policy    calibration.FallbackPolicy
	metrics   domrepo.Metrics
	l         *logger.Logger
}

func NewWeightRecalibrator(store domrepo.PerformanceStore, window int, steepness float64, policy calibration.FallbackPolicy, metrics domrepo.Metrics, l *logger.Logger) *WeightRecalibrator {
	return &WeightRecalibrator{
		store:     store,
		window:    window,
		steepness: steepness,
		policy:    policy,
		metrics:   metrics,
		l:         l.With(logger.String("component", "weight_recalibrator")),
	}
}

// WinRates tallies each factor over the window most recent prediction
// dates on or before d.
func WinRates(ctx context.Context, store domrepo.PredictionStore, d time.Time, window int) (map[models.Factor]calibration.WinRate, error) {
	dates, err := store.PredictionDates(ctx, d, window)
	if err != nil {
		return nil, fmt.Errorf("prediction dates: %w", err)
	}
	if len(dates) == 0 {
		return map[models.Factor]calibration.WinRate{}, nil
	}
	preds, err := store.Predictions(ctx, domrepo.Between(dates[len(dates)-1], dates[0]))
	if err != nil {
		return nil, fmt.Errorf("window predictions: %w", err)
	}
	return calibration.Tally(preds), nil
}

// Recalibrate computes and persists the generation for calcDate.
func (r *WeightRecalibrator) Recalibrate(ctx context.Context, calcDate time.Time) (models.WeightGeneration, error) {
	start := time.Now()
	calcDate = models.TradeDay(calcDate)
	rates, err := WinRates(ctx, r.store, calcDate, r.window)
	if err != nil {
		r.metrics.RecordError("recalibrate_read")
		return models.WeightGeneration{}, err
	}

	gen, err := calibration.Calibrate(calcDate, rates, r.steepness)
	if errors.Is(err, calibration.ErrInsufficientData) {
		prev, perr := r.store.LatestGeneration(ctx, calcDate.AddDate(0, 0, -1))
		if perr != nil {
			return models.WeightGeneration{}, fmt.Errorf("previous generation: %w", perr)
		}
		gen = r.policy.Fallback(calcDate, rates, prev)
		r.l.Warn("insufficient observations, using fallback weights",
			logger.Date("calc_date", calcDate),
			logger.String("policy", string(r.policy)),
			logger.String("source", string(gen.Source())))
	} else if err != nil {
		return models.WeightGeneration{}, err
	}
	if err := gen.Weights().Validate(); err != nil {
		return models.WeightGeneration{}, err
	}

	if err := r.store.UpsertWeights(ctx, gen.Rows); err != nil {
		r.metrics.RecordError("recalibrate_upsert")
		return models.WeightGeneration{}, fmt.Errorf("persist weights: %w", err)
	}
	r.metrics.RecordWeights(gen)
	r.metrics.RecordLatency("recalibrate", time.Since(start).Seconds())
	r.l.Info("weights recalibrated",
		logger.Date("calc_date", calcDate),
		logger.String("source", string(gen.Source())),
		logger.Duration("duration_ms", time.Since(start)))
	return gen, nil
}
