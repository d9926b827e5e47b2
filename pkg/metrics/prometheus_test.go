package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"FactorEdge/internal/domain/models"
)

func TestRecorderGauges(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordWeights(models.WeightGeneration{Rows: []models.FactorWeight{
		{Factor: models.FactorStreak, Weight: 0.4, WinRate: 0.6},
	}})
	r.RecordComposite(models.CompositePrediction{Composite: 0.62, Signal: models.SignalBuy})
	r.RecordCycle("ok", 0.1)
	r.RecordBarsIngested(3)

	assert.Equal(t, 0.4, testutil.ToFloat64(r.weights.WithLabelValues("streak")))
	assert.Equal(t, 0.6, testutil.ToFloat64(r.winRates.WithLabelValues("streak")))
	assert.Equal(t, 0.62, testutil.ToFloat64(r.composite))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.signal.WithLabelValues("buy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.signal.WithLabelValues("sell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cycles.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.barsIngested))
}
