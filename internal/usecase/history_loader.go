package usecase

import (
	"context"
	"fmt"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/services/features"
)

// HistoryLoader reads bars and derives the feature history a run works from.
type HistoryLoader struct {
	bars domrepo.PriceHistoryStore
}

func NewHistoryLoader(bars domrepo.PriceHistoryStore) *HistoryLoader {
	return &HistoryLoader{bars: bars}
}

// Snapshot returns the history of every bar on or before asOf. A zero
// asOf loads everything.
func (l *HistoryLoader) Snapshot(ctx context.Context, asOf time.Time) (models.History, error) {
	r := domrepo.DateRange{}
	if !asOf.IsZero() {
		r = domrepo.Through(models.TradeDay(asOf))
	}
	bars, err := l.bars.Range(ctx, r)
	if err != nil {
		return models.History{}, fmt.Errorf("load bars: %w", err)
	}
	rows, err := features.Derive(bars)
	if err != nil {
		return models.History{}, fmt.Errorf("derive features: %w", err)
	}
	return models.NewHistory(rows), nil
}
