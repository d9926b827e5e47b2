package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FactorEdge/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles       *prometheus.CounterVec
	cycleSeconds prometheus.Histogram
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	weights      *prometheus.GaugeVec
	winRates     *prometheus.GaugeVec
	composite    prometheus.Gauge
	signal       *prometheus.GaugeVec
	barsIngested prometheus.Counter
}

// New registers on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factoredge_cycles_total",
				Help: "Daily cycles run, by result",
			},
			[]string{"result"},
		),
		cycleSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "factoredge_cycle_duration_seconds",
			Help:    "Duration of the daily cycle",
			Buckets: prometheus.DefBuckets,
		}),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factoredge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factoredge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		weights: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "factoredge_factor_weight",
				Help: "Current weight of each factor",
			},
			[]string{"factor"},
		),
		winRates: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "factoredge_factor_win_rate",
				Help: "Trailing win-rate behind each factor's weight",
			},
			[]string{"factor"},
		),
		composite: f.NewGauge(prometheus.GaugeOpts{
			Name: "factoredge_next_day_composite",
			Help: "Composite P(up) for the next trade date",
		}),
		signal: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "factoredge_next_day_signal",
				Help: "1 for the active next-day signal, 0 otherwise",
			},
			[]string{"signal"},
		),
		barsIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "factoredge_bars_ingested_total",
			Help: "Daily bars accepted from ingestion",
		}),
	}
}

func (r *Recorder) RecordCycle(result string, seconds float64) {
	r.cycles.WithLabelValues(result).Inc()
	r.cycleSeconds.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordWeights(g models.WeightGeneration) {
	for _, row := range g.Rows {
		r.weights.WithLabelValues(row.Factor.String()).Set(row.Weight)
		r.winRates.WithLabelValues(row.Factor.String()).Set(row.WinRate)
	}
}

func (r *Recorder) RecordComposite(p models.CompositePrediction) {
	r.composite.Set(p.Composite)
	for _, s := range models.AllSignals {
		v := 0.0
		if s == p.Signal {
			v = 1
		}
		r.signal.WithLabelValues(s.String()).Set(v)
	}
}

func (r *Recorder) RecordBarsIngested(n int) {
	r.barsIngested.Add(float64(n))
}
