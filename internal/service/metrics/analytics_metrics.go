// Package metrics records report computation metrics for the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReportMetrics tracks per-report compute latency, errors and cache hits.
type ReportMetrics struct {
	latency   *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	f := promauto.With(reg)
	return &ReportMetrics{
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "factoredge",
				Subsystem: "report",
				Name:      "latency_seconds",
				Help:      "Latency of report computations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"report"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "factoredge",
				Subsystem: "report",
				Name:      "errors_total",
				Help:      "Errors by report",
			},
			[]string{"report"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "factoredge",
				Subsystem: "report",
				Name:      "cache_hits_total",
				Help:      "Report responses served from cache",
			},
			[]string{"report"},
		),
	}
}

func (m *ReportMetrics) Observe(report string, seconds float64, err error) {
	m.latency.WithLabelValues(report).Observe(seconds)
	if err != nil {
		m.errors.WithLabelValues(report).Inc()
	}
}

func (m *ReportMetrics) CacheHit(report string) {
	m.cacheHits.WithLabelValues(report).Inc()
}
