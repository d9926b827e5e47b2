package usecase

import (
	"context"
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/domain/service"
	"FactorEdge/internal/services/factors"
	"FactorEdge/pkg/logger"
)

// PerformanceTracker scores each factor's point-in-time estimate against
// the realized outcome and persists one prediction per (day, factor).
type PerformanceTracker struct {
	history    *HistoryLoader
	store      domrepo.PredictionStore
	estimators []service.FactorEstimator
	window     int
	metrics    domrepo.Metrics
	l          *logger.Logger
}

func NewPerformanceTracker(history *HistoryLoader, store domrepo.PredictionStore, estimators []service.FactorEstimator, window int, metrics domrepo.Metrics, l *logger.Logger) *PerformanceTracker {
	return &PerformanceTracker{
		history:    history,
		store:      store,
		estimators: estimators,
		window:     window,
		metrics:    metrics,
		l:          l.With(logger.String("component", "performance_tracker")),
	}
}

// Track scores the window most recent days on or before asOf.
func (t *PerformanceTracker) Track(ctx context.Context, asOf time.Time) (int, error) {
	h, err := t.history.Snapshot(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if asOf.IsZero() {
		latest, ok := h.Latest()
		if !ok {
			return 0, nil
		}
		asOf = latest.TradeDate
	}
	return t.TrackHistory(ctx, h, asOf)
}

// TrackHistory is Track over an already loaded snapshot.
func (t *PerformanceTracker) TrackHistory(ctx context.Context, h models.History, asOf time.Time) (int, error) {
	return t.track(ctx, h, h.Tail(models.TradeDay(asOf), t.window))
}

// TrackRange scores every day in [from, to]. It is the explicit path for
// refreshing predictions after bars were corrected.
func (t *PerformanceTracker) TrackRange(ctx context.Context, h models.History, r domrepo.DateRange) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	var days []models.FeatureRow
	for _, row := range h.Rows() {
		if r.Contains(row.TradeDate) {
			days = append(days, row)
		}
	}
	return t.track(ctx, h, days)
}

func (t *PerformanceTracker) track(ctx context.Context, h models.History, days []models.FeatureRow) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}
	start := time.Now()
	panel := factors.Evaluate(h, t.estimators)
	preds := make([]models.FactorPrediction, 0, len(days)*len(t.estimators))
	for _, row := range days {
		probs, ok := panel.On(row.TradeDate)
		if !ok {
			continue
		}
		for _, f := range models.AllFactors {
			p, ok := probs[f]
			if !ok {
				p = models.Neutral()
			}
			preds = append(preds, models.NewFactorPrediction(row.TradeDate, f, p, row.Outcome()))
		}
	}
	if err := t.store.UpsertPredictions(ctx, preds); err != nil {
		t.metrics.RecordError("track_upsert")
		return 0, fmt.Errorf("persist predictions: %w", err)
	}
	t.metrics.RecordLatency("track", time.Since(start).Seconds())
	t.l.Info("predictions tracked",
		logger.Date("from", days[0].TradeDate),
		logger.Date("to", days[len(days)-1].TradeDate),
		logger.Int("rows", len(preds)),
		logger.Duration("duration_ms", time.Since(start)))
	return len(preds), nil
}
