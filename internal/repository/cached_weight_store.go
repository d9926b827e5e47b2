package repository

import (
	"context"
	"errors"
	"time"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/pkg/cache"
	"FactorEdge/pkg/logger"
)

const weightKeyPrefix = "weights"

// cachedGeneration distinguishes a cached "no generation" from a miss.
type cachedGeneration struct {
	Found      bool                     `json:"found"`
	Generation *models.WeightGeneration `json:"generation,omitempty"`
}

// CachedPerformanceStore caches LatestGeneration lookups in front of a
// PerformanceStore. Any weight upsert drops every cached lookup.
type CachedPerformanceStore struct {
	domrepo.PerformanceStore
	cache cache.Service
	ttl   time.Duration
	l     *logger.Logger
}

func NewCachedPerformanceStore(inner domrepo.PerformanceStore, c cache.Service, ttl time.Duration, l *logger.Logger) *CachedPerformanceStore {
	return &CachedPerformanceStore{PerformanceStore: inner, cache: c, ttl: ttl, l: l}
}

func latestKey(d time.Time) string {
	return cache.Key(weightKeyPrefix, "latest", d.Format(time.DateOnly))
}

func (s *CachedPerformanceStore) LatestGeneration(ctx context.Context, onOrBefore time.Time) (*models.WeightGeneration, error) {
	key := latestKey(onOrBefore)
	var hit cachedGeneration
	err := s.cache.Get(ctx, key, &hit)
	if err == nil {
		return hit.Generation, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.l.Warn("weight cache read failed", logger.String("key", key), logger.Error(err))
	}

	g, err := s.PerformanceStore.LatestGeneration(ctx, onOrBefore)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, cachedGeneration{Found: g != nil, Generation: g}, s.ttl); err != nil {
		s.l.Warn("weight cache write failed", logger.String("key", key), logger.Error(err))
	}
	return g, nil
}

func (s *CachedPerformanceStore) UpsertWeights(ctx context.Context, rows []models.FactorWeight) error {
	if err := s.PerformanceStore.UpsertWeights(ctx, rows); err != nil {
		return err
	}
	if err := s.cache.DeleteByPattern(ctx, cache.Key(weightKeyPrefix, "*")); err != nil {
		s.l.Warn("weight cache invalidation failed", logger.Error(err))
	}
	return nil
}
