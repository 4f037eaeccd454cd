// Package metrics holds the Prometheus collectors for one fetch run.
//
// The CLI is short lived, so nothing is scraped; when a metrics file is
// configured the registry is written in text exposition format for the
// node_exporter textfile collector.
//
// Metrics:
//   - kline_pages_total{outcome} (Counter): page fetches by outcome
//     (new, repeated, empty, stale, transport_failure)
//   - kline_strikes_total (Counter): unchanged strikes counted by the pagination loop
//   - kline_bars (Gauge): bars in the dataset at the end of the last fetch
//   - kline_fetch_duration_seconds (Histogram): duration of a full fetch
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page outcomes.
const (
	OutcomeNew      = "new"
	OutcomeRepeated = "repeated"
	OutcomeEmpty    = "empty"
	OutcomeStale    = "stale"
	OutcomeFailure  = "transport_failure"
)

// Metrics groups the collectors on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	Pages    *prometheus.CounterVec
	Strikes  prometheus.Counter
	Bars     prometheus.Gauge
	Duration prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Pages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kline_pages_total",
				Help: "Total number of kline page fetches by outcome",
			},
			[]string{"outcome"},
		),
		Strikes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kline_strikes_total",
				Help: "Total number of unchanged strikes counted while paginating",
			},
		),
		Bars: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kline_bars",
				Help: "Number of bars in the last fetched dataset",
			},
		),
		Duration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kline_fetch_duration_seconds",
				Help:    "Duration of a full backward-paginated fetch",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
	}
}

// ObservePage counts one page fetch. Safe on a nil receiver.
func (m *Metrics) ObservePage(outcome string, strike bool) {
	if m == nil {
		return
	}
	m.Pages.WithLabelValues(outcome).Inc()
	if strike {
		m.Strikes.Inc()
	}
}

// ObserveFetch records the result of a full fetch. Safe on a nil receiver.
func (m *Metrics) ObserveFetch(bars int, d time.Duration) {
	if m == nil {
		return
	}
	m.Bars.Set(float64(bars))
	m.Duration.Observe(d.Seconds())
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
