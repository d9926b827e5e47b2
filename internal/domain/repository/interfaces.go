package repository

import (
	"context"
	"time"

	"FactorEdge/internal/domain/models"
)

// PriceHistoryStore persists closed daily bars. Ingestion appends bars;
// the engine only reads them.
type PriceHistoryStore interface {
	Init(ctx context.Context) error
	// Range returns bars in r ordered by date. A zero bound is open.
	Range(ctx context.Context, r DateRange) ([]models.DailyBar, error)
	// MaxDate returns the most recent trade date; ok is false when empty.
	MaxDate(ctx context.Context) (t time.Time, ok bool, err error)
	// Upsert inserts bars, replacing any bar with the same trade date.
	Upsert(ctx context.Context, bars []models.DailyBar) error
	Health(ctx context.Context) error
	Close() error
}

// PredictionStore persists scored factor predictions keyed by (trade_date, factor).
type PredictionStore interface {
	UpsertPredictions(ctx context.Context, rows []models.FactorPrediction) error
	// Predictions returns rows in r ordered by trade date then factor.
	Predictions(ctx context.Context, r DateRange) ([]models.FactorPrediction, error)
	// PredictionDates returns up to limit distinct trade dates on or before
	// onOrBefore, most recent first.
	PredictionDates(ctx context.Context, onOrBefore time.Time, limit int) ([]time.Time, error)
}

// WeightStore persists weight generations keyed by (calculation_date, factor).
type WeightStore interface {
	UpsertWeights(ctx context.Context, rows []models.FactorWeight) error
	// LatestGeneration returns the most recent generation dated on or before
	// onOrBefore, or nil when none exists.
	LatestGeneration(ctx context.Context, onOrBefore time.Time) (*models.WeightGeneration, error)
	// Generations returns all generations in r ordered by calculation date.
	Generations(ctx context.Context, r DateRange) ([]models.WeightGeneration, error)
}

// PerformanceStore is the combined prediction and weight persistence.
type PerformanceStore interface {
	PredictionStore
	WeightStore
	Init(ctx context.Context) error
	Close() error
}

// PredictionPublisher announces next-day composites to downstream consumers.
type PredictionPublisher interface {
	PublishPrediction(ctx context.Context, p models.CompositePrediction) error
	Close() error
}

// RunLock serialises daily cycles across processes.
type RunLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordCycle(result string, seconds float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordWeights(g models.WeightGeneration)
	RecordComposite(p models.CompositePrediction)
	RecordBarsIngested(n int)
}
