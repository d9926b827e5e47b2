package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FactorEdge/internal/domain/models"
	domrepo "FactorEdge/internal/domain/repository"
	"FactorEdge/internal/repository"
	"FactorEdge/internal/testutil"
	"FactorEdge/pkg/logger"
	"FactorEdge/pkg/metrics"
)

type recordingCycler struct {
	mu   sync.Mutex
	runs []time.Time
	err  error
}

func (r *recordingCycler) Run(_ context.Context, asOf time.Time) (*models.CycleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, asOf)
	if r.err != nil {
		return nil, r.err
	}
	return &models.CycleResult{AsOf: asOf}, nil
}

func (r *recordingCycler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func newBarsHandler(t *testing.T) (*KafkaBarsHandler, *repository.MemoryBarStore, *recordingCycler) {
	store := repository.NewMemoryBarStore()
	require.NoError(t, store.Upsert(context.Background(), testutil.Pattern(testutil.Day(2024, 1, 1), "uudd")))
	c := &recordingCycler{}
	h := NewKafkaBarsHandler("bars", "BTC-USDT", store, c, metrics.NewWithRegistry(prometheus.NewRegistry()), logger.Nop())
	return h, store, c
}

func TestBarsHandlerNewDayRunsCycle(t *testing.T) {
	h, store, c := newBarsHandler(t)
	msg := `{"symbol":"BTC-USDT","trade_date":"2024-01-05","open":"100","high":"103","low":"99","close":"102.5","volume":1500}`

	require.NoError(t, h.Handle(context.Background(), []byte(msg)))
	assert.Equal(t, []time.Time{testutil.Day(2024, 1, 5)}, c.runs)

	bars, err := store.Range(context.Background(), domrepo.Between(testutil.Day(2024, 1, 5), testutil.Day(2024, 1, 5)))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "102.5", bars[0].Close.String())
}

func TestBarsHandlerBackfillOnlyStores(t *testing.T) {
	h, store, c := newBarsHandler(t)
	msg := `{"trade_date":"2024-01-02","open":"100","high":"101","low":"98","close":"99","volume":"800"}`

	require.NoError(t, h.Handle(context.Background(), []byte(msg)))
	assert.Zero(t, c.count())
	bars, err := store.Range(context.Background(), domrepo.Between(testutil.Day(2024, 1, 2), testutil.Day(2024, 1, 2)))
	require.NoError(t, err)
	assert.Equal(t, "99", bars[0].Close.String())
}

func TestBarsHandlerCycleInProgressIsNotAnError(t *testing.T) {
	h, _, c := newBarsHandler(t)
	c.err = models.ErrCycleInProgress
	msg := `{"trade_date":"2024-01-06","open":"100","high":"101","low":"98","close":"99","volume":"800"}`
	assert.NoError(t, h.Handle(context.Background(), []byte(msg)))
}

func TestBarsHandlerRejects(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"bad json", `{"trade_date":`},
		{"bad date", `{"trade_date":"05/01/2024","open":"1","close":"1"}`},
		{"zero close", `{"trade_date":"2024-01-06","open":"100","close":"0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, c := newBarsHandler(t)
			assert.Error(t, h.Handle(context.Background(), []byte(tt.msg)))
			assert.Zero(t, c.count())
		})
	}
}

func TestBarsHandlerIgnoresOtherSymbols(t *testing.T) {
	h, _, c := newBarsHandler(t)
	msg := `{"symbol":"ETH-USDT","trade_date":"2024-01-06","open":"100","close":"101"}`
	require.NoError(t, h.Handle(context.Background(), []byte(msg)))
	assert.Zero(t, c.count())
}
