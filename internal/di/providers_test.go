package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	"FactorEdge/internal/testutil"
	"FactorEdge/pkg/cache"
	"FactorEdge/pkg/config"
	"FactorEdge/pkg/logger"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Prices = "memory"
	cfg.Storage.Performance = "memory"
	cfg.Log.Level = "error"
	return cfg
}

func TestProvideDefaultWeights(t *testing.T) {
	cfg := memoryConfig(t)

	w, err := ProvideDefaultWeights(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWeights(), w)

	cfg.Engine.DefaultWeights = map[string]float64{"calendar": 0.25, "streak": 0.25, "volume": 0.25, "technical": 0.25}
	w, err = ProvideDefaultWeights(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.25, w[models.FactorVolume])

	cfg.Engine.DefaultWeights = map[string]float64{"moon": 1}
	_, err = ProvideDefaultWeights(cfg)
	assert.Error(t, err)
}

func TestProvideFallbackPolicy(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Engine.FallbackPolicy = "sideways"
	_, err := ProvideFallbackPolicy(cfg)
	assert.Error(t, err)
}

func TestProvideCacheUsesMemorySettings(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.Cache.MemoryMaxSize = 1

	c, cleanup, err := ProvideCache(cfg, logger.Nop())
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, &cache.MemoryCache{}, c)

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	var v int
	assert.ErrorIs(t, c.Get(ctx, "a", &v), cache.ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "b", &v))
}

func TestInitializeEngineInMemory(t *testing.T) {
	ctx := context.Background()
	engine, cleanup, err := InitializeEngine(memoryConfig(t))
	require.NoError(t, err)
	defer cleanup()

	_, err = engine.Cycle.Run(ctx, time.Time{})
	assert.ErrorIs(t, err, models.ErrNoData)

	bars := testutil.Walk(testutil.Day(2024, 1, 1), 45, 13)
	require.NoError(t, engine.Bars.Upsert(ctx, bars))

	res, err := engine.Cycle.Run(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, bars[len(bars)-1].TradeDate, res.AsOf)
	assert.False(t, res.Published, "kafka is disabled")
	assert.Equal(t, bars[len(bars)-1].TradeDate.AddDate(0, 0, 1), res.NextDay.TradeDate)

	gen, err := engine.Performance.LatestGeneration(ctx, res.AsOf)
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.InDelta(t, 1, gen.Weights().Sum(), 1e-6)
}
