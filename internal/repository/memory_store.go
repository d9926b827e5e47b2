package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
)

// MemoryBarStore is an in-process PriceHistoryStore for tests and local runs.
type MemoryBarStore struct {
	mu   sync.RWMutex
	bars map[int64]models.DailyBar
}

func NewMemoryBarStore() *MemoryBarStore {
	return &MemoryBarStore{bars: make(map[int64]models.DailyBar)}
}

func (s *MemoryBarStore) Init(context.Context) error { return nil }

func (s *MemoryBarStore) Range(_ context.Context, r domrepo.DateRange) ([]models.DailyBar, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DailyBar, 0, len(s.bars))
	for _, b := range s.bars {
		if r.Contains(b.TradeDate) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TradeDate.Before(out[j].TradeDate) })
	return out, nil
}

func (s *MemoryBarStore) MaxDate(context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max time.Time
	for _, b := range s.bars {
		if b.TradeDate.After(max) {
			max = b.TradeDate
		}
	}
	return max, len(s.bars) > 0, nil
}

func (s *MemoryBarStore) Upsert(_ context.Context, bars []models.DailyBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bars {
		b.TradeDate = models.TradeDay(b.TradeDate)
		s.bars[b.TradeDate.Unix()] = b
	}
	return nil
}

func (s *MemoryBarStore) Health(context.Context) error { return nil }
func (s *MemoryBarStore) Close() error                 { return nil }

type predictionKey struct {
	day    int64
	factor models.Factor
}

// MemoryPerformanceStore is an in-process PerformanceStore. Writes to an
// existing key replace it.
type MemoryPerformanceStore struct {
	mu      sync.RWMutex
	preds   map[predictionKey]models.FactorPrediction
	weights map[predictionKey]models.FactorWeight
}

func NewMemoryPerformanceStore() *MemoryPerformanceStore {
	return &MemoryPerformanceStore{
		preds:   make(map[predictionKey]models.FactorPrediction),
		weights: make(map[predictionKey]models.FactorWeight),
	}
}

func (s *MemoryPerformanceStore) Init(context.Context) error { return nil }
func (s *MemoryPerformanceStore) Close() error               { return nil }

func (s *MemoryPerformanceStore) UpsertPredictions(_ context.Context, rows []models.FactorPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range rows {
		p.TradeDate = models.TradeDay(p.TradeDate)
		s.preds[predictionKey{p.TradeDate.Unix(), p.Factor}] = p
	}
	return nil
}

func (s *MemoryPerformanceStore) Predictions(_ context.Context, r domrepo.DateRange) ([]models.FactorPrediction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FactorPrediction, 0, len(s.preds))
	for _, p := range s.preds {
		if r.Contains(p.TradeDate) {
			out = append(out, p)
		}
	}
	sortPredictions(out)
	return out, nil
}

func (s *MemoryPerformanceStore) PredictionDates(_ context.Context, onOrBefore time.Time, limit int) ([]time.Time, error) {
	s.mu.RLock()
	seen := make(map[int64]time.Time)
	for _, p := range s.preds {
		if !p.TradeDate.After(onOrBefore) {
			seen[p.TradeDate.Unix()] = p.TradeDate
		}
	}
	s.mu.RUnlock()

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (s *MemoryPerformanceStore) UpsertWeights(_ context.Context, rows []models.FactorWeight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range rows {
		w.CalculationDate = models.TradeDay(w.CalculationDate)
		s.weights[predictionKey{w.CalculationDate.Unix(), w.Factor}] = w
	}
	return nil
}

func (s *MemoryPerformanceStore) LatestGeneration(ctx context.Context, onOrBefore time.Time) (*models.WeightGeneration, error) {
	gens, err := s.Generations(ctx, domrepo.Through(onOrBefore))
	if err != nil || len(gens) == 0 {
		return nil, err
	}
	g := gens[len(gens)-1]
	return &g, nil
}

func (s *MemoryPerformanceStore) Generations(_ context.Context, r domrepo.DateRange) ([]models.WeightGeneration, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rows := make([]models.FactorWeight, 0, len(s.weights))
	for _, w := range s.weights {
		if r.Contains(w.CalculationDate) {
			rows = append(rows, w)
		}
	}
	s.mu.RUnlock()
	return groupGenerations(rows), nil
}
